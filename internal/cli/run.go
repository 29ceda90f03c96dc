package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/bridge"
	"github.com/skillbox-labs/skillbox/internal/engine"
)

var (
	runRunID       string
	runAgentID     string
	runCoordinator bool
	runSets        []string
)

var runCmd = &cobra.Command{
	Use:   "run <skill>",
	Short: "Run a skill",
	Long: `Execute a discovered skill by name.

The skill's config.yaml provides default options; --set overrides merge on
top (shallow, override wins). Values parse as JSON scalars where possible,
or as loose objects like {enabled:true,command:status}.

The command prints exactly one JSON result to stdout. Telemetry and
artifacts land under outputs/<skill>/<run-id>/.`,
	Example: `  skillbox run web_automation --set query="site reliability"
  skillbox run web_automation --set session.command=start
  skillbox run web_automation --run-id 20260830T120000Z_cafe01ab --agent agent1`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runRunID, "run-id", "", "Run identifier to join (default: new run)")
	runCmd.Flags().StringVar(&runAgentID, "agent", "", "Agent identifier within the run (default: agent0)")
	runCmd.Flags().BoolVar(&runCoordinator, "coordinator", false, "Act as the run's coordinator agent")
	runCmd.Flags().StringArrayVar(&runSets, "set", nil, "Config override key=value (can be specified multiple times)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	overrides, err := parseSetFlags(runSets)
	if err != nil {
		return err
	}

	res, runErr := engine.RunSkill(cmd.Context(), args[0], engine.Options{
		RootDir:         rootDir,
		RunID:           runRunID,
		AgentID:         runAgentID,
		Coordinator:     runCoordinator,
		ConfigOverrides: overrides,
		Invocation:      map[string]any{"via": "cli", "overrides": runSets},
	})
	// One JSON result object lands on stdout no matter the outcome, so
	// scripts can always parse the output; the exit status still reflects
	// the failure.
	if res == nil && runErr != nil {
		res = map[string]any{"status": "error", "error": runErr.Error()}
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return runErr
}

// parseSetFlags turns repeated key=value flags into typed overrides. Values
// are tried as JSON first (numbers, booleans, quoted strings, objects), then
// as loose objects, then kept as plain strings.
func parseSetFlags(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(sets))
	for _, item := range sets {
		key, raw, found := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --set %q (expected key=value)", item)
		}
		out[key] = parseSetValue(raw)
	}
	return out, nil
}

func parseSetValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v
	}
	if obj := bridge.ParseLooseObject(trimmed); obj != nil {
		return obj
	}
	return raw
}
