package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/platform"
	"github.com/skillbox-labs/skillbox/internal/registry"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered skills",
	Long:  `List every skill discovered under the configured skill roots.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents one discovered skill for display.
type listEntry struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Entry       string `json:"entry"`
	Description string `json:"description,omitempty"`
	Dir         string `json:"dir"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := platform.Load(rootDir)
	if err != nil {
		return err
	}

	skills := registry.Discover(cfg.SkillRoots())
	if len(skills) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No skills found.")
		return nil
	}

	entries := make([]listEntry, 0, len(skills))
	for _, m := range skills {
		entries = append(entries, listEntry{
			Name:        m.Name,
			Version:     m.Version,
			Entry:       m.Entry,
			Description: m.Description,
			Dir:         m.SkillDir,
		})
	}

	if listJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tENTRY\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Version, e.Entry, truncate(e.Description, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "..."
}
