package bridge

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// StateFileName is the session state file kept under the run's shared
// directory so any agent in the same run can discover and reuse the worker.
const StateFileName = "browser_session.json"

// SessionState describes one running worker process. The file is
// overwritten (not merged) on restart and deleted on explicit close. A
// stale file (worker crashed without cleanup) is detected by a failed
// liveness probe against BaseURL, not by process-existence checks.
type SessionState struct {
	BaseURL     string `json:"baseUrl"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	PID         int    `json:"pid"`
	UserDataDir string `json:"userDataDir"`
	StartedAt   int64  `json:"startedAt"`
}

// statePath returns the session state file location for this run.
func (b *Bridge) statePath() string {
	return filepath.Join(b.rc.SharedDir, StateFileName)
}

// loadState reads the session state file. A missing or unreadable file
// means no session: reads are tolerant of races because liveness is
// re-verified by probe, never trusted from the file alone.
func (b *Bridge) loadState() *SessionState {
	data, err := os.ReadFile(b.statePath())
	if err != nil {
		return nil
	}
	var st SessionState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil
	}
	return &st
}

// saveState persists the session state, or deletes the file when st is nil.
// Best-effort: state-file housekeeping must not fail the run.
func (b *Bridge) saveState(st *SessionState) {
	path := b.statePath()
	if st == nil {
		_ = os.Remove(path)
		return
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, append(data, '\n'), 0o644)
}
