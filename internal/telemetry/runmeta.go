package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RunMeta describes one agent's participation in a run.
type RunMeta struct {
	Skill       string
	RunID       string
	RootDir     string
	AgentID     string
	StartedAt   string
	Coordinator bool
}

// WriteAgentMeta writes the always-written per-agent metadata record
// (agent.json) including the effective config.
func WriteAgentMeta(agentDir string, meta RunMeta, config map[string]any) (string, error) {
	payload := map[string]any{
		"skill":       meta.Skill,
		"run_id":      meta.RunID,
		"agent_id":    meta.AgentID,
		"started_at":  meta.StartedAt,
		"coordinator": meta.Coordinator,
		"config":      config,
	}
	p := filepath.Join(agentDir, "agent.json")
	if err := writeJSONFile(p, payload); err != nil {
		return "", err
	}
	return p, nil
}

// WriteSharedRunMeta writes the run-level metadata record (run.json) into
// the shared directory, but only if it does not already exist: first writer
// wins. This is a best-effort "create once" without locks, good enough when
// a single coordinator writes shared metadata.
func WriteSharedRunMeta(sharedDir string, meta RunMeta) (string, error) {
	p := filepath.Join(sharedDir, "run.json")
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	payload := map[string]any{
		"skill":      meta.Skill,
		"run_id":     meta.RunID,
		"root_dir":   meta.RootDir,
		"started_at": meta.StartedAt,
	}
	if err := writeJSONFile(p, payload); err != nil {
		return "", err
	}
	return p, nil
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
