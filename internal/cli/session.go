package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/bridge"
	"github.com/skillbox-labs/skillbox/internal/engine"
)

var (
	sessionRunID   string
	sessionAgentID string
)

var sessionCmd = &cobra.Command{
	Use:   "session <skill> <status|start|close>",
	Short: "Manage a skill's worker session",
	Long: `Inspect or control the long-lived browser worker attached to a run.

status probes the recorded session's health endpoint; start ensures a
worker is running (spawning one if needed); close shuts the worker down
and clears the session state. Pass --run-id to address an existing run,
otherwise a new run is created (only useful with start).`,
	Args: cobra.ExactArgs(2),
	RunE: runSession,
}

func init() {
	sessionCmd.Flags().StringVar(&sessionRunID, "run-id", "", "Run identifier holding the session")
	sessionCmd.Flags().StringVar(&sessionAgentID, "agent", "", "Agent identifier (default: agent0)")
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	skillName, command := args[0], args[1]

	rc, closeLog, err := engine.BuildContext(skillName, engine.Options{
		RootDir: rootDir,
		RunID:   sessionRunID,
		AgentID: sessionAgentID,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	br := bridge.New(rc)
	var out map[string]any
	switch command {
	case "status", "health":
		out = br.Status(cmd.Context())
	case "start", "open":
		st, err := br.EnsureSession(cmd.Context(), bridge.SessionSpec{Enabled: true, Command: "start"}, map[string]any{})
		if err != nil {
			return err
		}
		out = map[string]any{"ok": true, "baseUrl": st.BaseURL, "pid": st.PID, "run_id": rc.RunID}
	case "close", "stop", "shutdown":
		out = br.CloseSession(cmd.Context())
	default:
		return fmt.Errorf("unknown session command %q (expected status, start or close)", command)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
