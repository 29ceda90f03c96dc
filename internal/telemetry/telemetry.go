// Package telemetry implements the per-run telemetry store: append-only
// JSON-lines event and memory logs plus a content-addressed artifact index.
//
// There is deliberately no locking. The safe multi-agent pattern is one
// append-only file per writer identity: every agent owns its private logs,
// and the shared logs are written only by the run's coordinator agent.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scope selects which logs a record is written to.
type Scope string

const (
	ScopeAgent  Scope = "agent"
	ScopeShared Scope = "shared"
	ScopeBoth   Scope = "both"
)

// ErrSharedNotConfigured is returned when a shared-scope write is requested
// but no shared log was wired for this run.
var ErrSharedNotConfigured = errors.New("shared log is not configured for this run")

// Meta identifies the writer of every record in a log.
type Meta struct {
	Skill   string
	RunID   string
	AgentID string
}

// utcTimestamp returns the current UTC time with millisecond precision,
// e.g. "2026-08-30T15:30:45.123Z".
func utcTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// appendJSONL marshals v and appends it as one line to path, creating the
// parent directory as needed.
func appendJSONL(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending to log %s: %w", path, err)
	}
	return nil
}

// ReadJSONL reads a JSON-lines file, skipping blank and malformed lines.
// A missing or unreadable file yields an empty slice: readers of telemetry
// logs are best-effort by design.
func ReadJSONL(path string) []map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []map[string]any
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}
