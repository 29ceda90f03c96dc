package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/platform"
)

var runsJSON bool

var runsCmd = &cobra.Command{
	Use:   "runs [skill]",
	Short: "List recorded runs",
	Long:  `List run directories under the outputs root, newest run id last.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(runsCmd)
}

// runEntry represents one recorded run for display.
type runEntry struct {
	Skill     string   `json:"skill"`
	RunID     string   `json:"run_id"`
	StartedAt string   `json:"started_at,omitempty"`
	Agents    []string `json:"agents,omitempty"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := platform.Load(rootDir)
	if err != nil {
		return err
	}

	var skillNames []string
	if len(args) == 1 {
		skillNames = []string{args[0]}
	} else {
		dirs, err := os.ReadDir(cfg.OutputsDir)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return nil
		}
		for _, d := range dirs {
			if d.IsDir() {
				skillNames = append(skillNames, d.Name())
			}
		}
		sort.Strings(skillNames)
	}

	var entries []runEntry
	for _, skillName := range skillNames {
		runDirs, err := os.ReadDir(filepath.Join(cfg.OutputsDir, skillName))
		if err != nil {
			continue
		}
		var ids []string
		for _, d := range runDirs {
			if d.IsDir() {
				ids = append(ids, d.Name())
			}
		}
		sort.Strings(ids)

		for _, runID := range ids {
			runDir := filepath.Join(cfg.OutputsDir, skillName, runID)
			entry := runEntry{Skill: skillName, RunID: runID}

			// The shared run.json exists when a coordinator ran; its absence
			// is not an error, just an uncoordinated run.
			if data, err := os.ReadFile(filepath.Join(runDir, "shared", "run.json")); err == nil {
				var meta map[string]any
				if json.Unmarshal(data, &meta) == nil {
					entry.StartedAt, _ = meta["started_at"].(string)
				}
			}
			if agents, err := os.ReadDir(filepath.Join(runDir, "agents")); err == nil {
				for _, a := range agents {
					if a.IsDir() {
						entry.Agents = append(entry.Agents, a.Name())
					}
				}
				sort.Strings(entry.Agents)
			}
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	if runsJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SKILL\tRUN ID\tSTARTED\tAGENTS")
	for _, e := range entries {
		started := e.StartedAt
		if started == "" {
			started = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.Skill, e.RunID, started, len(e.Agents))
	}
	return w.Flush()
}
