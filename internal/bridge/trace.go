package bridge

import (
	"path/filepath"
	"strings"

	"github.com/skillbox-labs/skillbox/internal/telemetry"
)

// inferKind guesses an artifact kind from the field name a worker used for a
// path. Unknown names fall back to "file".
func inferKind(field string) string {
	f := strings.ToLower(strings.TrimSuffix(field, "path"))
	f = strings.TrimSuffix(f, "_")
	switch {
	case strings.Contains(f, "screenshot"):
		return "screenshot"
	case strings.Contains(f, "html"), strings.Contains(f, "pagesource"):
		return "html"
	case strings.Contains(f, "a11y"), strings.Contains(f, "accessibility"):
		return "a11y"
	case strings.Contains(f, "elements"), strings.Contains(f, "uimap"), strings.Contains(f, "ui_map"):
		return "ui_map"
	}
	return "file"
}

// resolvePath makes a worker-reported path absolute. Workers run with their
// own working directory, so relative paths are interpreted against this
// agent's outputs directory where they write by convention.
func (b *Bridge) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.rc.OutputsDir, p)
}

// indexResultPaths walks one flat result/trace entry and indexes every file
// a "path" or "*Path" field points at. Missing files are skipped silently;
// the worker may report paths it intended to write but didn't.
func (b *Bridge) indexResultPaths(entry map[string]any) {
	for field, v := range entry {
		lower := strings.ToLower(field)
		if lower != "path" && !strings.HasSuffix(lower, "path") {
			continue
		}
		p := toString(v)
		if p == "" {
			continue
		}
		b.rc.Artifacts.RecordPath(b.resolvePath(p), telemetry.ScopeAgent, inferKind(field), map[string]any{"field": field})
	}
}

// replayTrace folds a worker's JSONL trace into this run's telemetry: each
// entry becomes an "rpa."-prefixed event, and any file paths it mentions are
// indexed as artifacts. Malformed lines were already dropped by the reader.
func (b *Bridge) replayTrace(tracePath string) {
	abs := b.resolvePath(tracePath)
	entries := telemetry.ReadJSONL(abs)
	if len(entries) == 0 {
		return
	}
	b.rc.Artifacts.RecordPath(abs, telemetry.ScopeAgent, "trace", nil)

	for _, entry := range entries {
		name := toString(entry["event"])
		if name == "" {
			name = "entry"
		}
		b.rc.Events.Emit(telemetry.ScopeAgent, telemetry.Event{
			Name:    "rpa." + name,
			Message: toString(entry["message"]),
			Data:    entry,
		})
		b.indexResultPaths(entry)
	}
}
