package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/platform"
	"github.com/skillbox-labs/skillbox/internal/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate <skill>",
	Short: "Validate a skill manifest",
	Long: `Check that a skill is runnable: the manifest passes schema validation,
the version parses as semver, the entry reference is well-formed, and a
handler is registered for it.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := platform.Load(rootDir)
	if err != nil {
		return err
	}
	if err := registry.Validate(args[0], cfg.SkillRoots()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", args[0])
	return nil
}
