package cli

import (
	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/branding"
	"github.com/skillbox-labs/skillbox/internal/skills/webauto"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// rootDir is the project root every command operates on. Empty means the
// current working directory.
var rootDir string

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` discovers skills declared by skill.json manifests, executes them
with per-run telemetry (events, memory, artifacts), and bridges
browser-automation skills onto a long-lived external worker session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root directory (default: current directory)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	// Built-in skill handlers register before any command can resolve them.
	webauto.Register()

	return rootCmd.Execute()
}
