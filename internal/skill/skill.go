// Package skill defines the run context handed to skill code and the typed
// handler registry that maps manifest entry references onto compiled-in Go
// handlers.
package skill

import (
	"context"
	"log/slog"

	"github.com/skillbox-labs/skillbox/internal/platform"
	"github.com/skillbox-labs/skillbox/internal/telemetry"
)

// RunContext is the execution context for one (skill, run, agent) triple.
// It is created at run start and discarded at run end; nothing outlives the
// files it writes. RunID is shared by all agents collaborating on one run;
// AgentID partitions private state; exactly one agent per run is the
// coordinator and is the only writer of shared run-level metadata.
type RunContext struct {
	SkillName string
	RunID     string
	AgentID   string

	// Config is the skill-local configuration shallow-merged with caller
	// overrides (override wins, no deep merge).
	Config map[string]any

	Platform *platform.Config
	SkillDir string

	// Run directory layout: outputs/<skill>/<runId>/...
	RunDir     string
	SharedDir  string
	AgentDir   string
	WorkDir    string
	OutputsDir string

	IsCoordinator bool

	Log       *slog.Logger
	Events    *telemetry.EventBus
	Memory    *telemetry.MemoryStore
	Artifacts *telemetry.ArtifactStore
}

// HandlerFunc is one skill entry function. Any returned error is caught by
// the run engine and turned into a persisted error result.
type HandlerFunc func(ctx context.Context, rc *RunContext) (map[string]any, error)

// Module is a named bundle of entry functions registered for a skill.
// The manifest entry reference "<module>:<function>" selects first the
// module, then the function within it.
type Module map[string]HandlerFunc
