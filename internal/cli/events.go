package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/platform"
	"github.com/skillbox-labs/skillbox/internal/telemetry"
)

var (
	eventsAgent    string
	eventsShared   bool
	eventsName     string
	eventsContains string
	eventsLimit    int
)

var eventsCmd = &cobra.Command{
	Use:   "events <skill> <run-id>",
	Short: "Show a run's event log",
	Long: `Print the events recorded for one run, one JSON object per line.

By default the named agent's private log is shown; --shared selects the
run-shared log written by the coordinator instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsAgent, "agent", "agent0", "Agent whose log to read")
	eventsCmd.Flags().BoolVar(&eventsShared, "shared", false, "Read the run-shared log instead")
	eventsCmd.Flags().StringVar(&eventsName, "event", "", "Filter by event name prefix (e.g. rpa.)")
	eventsCmd.Flags().StringVar(&eventsContains, "contains", "", "Filter by substring in message")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "Show only the last N matching events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := platform.Load(rootDir)
	if err != nil {
		return err
	}
	skillName, runID := args[0], args[1]

	runDir := filepath.Join(cfg.OutputsDir, skillName, runID)
	logPath := filepath.Join(runDir, "agents", eventsAgent, "events.jsonl")
	if eventsShared {
		logPath = filepath.Join(runDir, "shared", "events.jsonl")
	}

	records := telemetry.ReadJSONL(logPath)
	var matched []map[string]any
	for _, rec := range records {
		if eventsName != "" {
			name, _ := rec["event"].(string)
			if !strings.HasPrefix(name, eventsName) {
				continue
			}
		}
		if eventsContains != "" {
			msg, _ := rec["message"].(string)
			if !strings.Contains(msg, eventsContains) {
				continue
			}
		}
		matched = append(matched, rec)
	}

	if eventsLimit > 0 && len(matched) > eventsLimit {
		matched = matched[len(matched)-eventsLimit:]
	}
	if len(matched) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching events.")
		return nil
	}

	for _, rec := range matched {
		line, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(line))
	}
	return nil
}
