// Package engine is the top-level run coordinator: it resolves a skill,
// builds the run context and telemetry stores, dispatches the registered
// handler, and guarantees a result record exists even on failure.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skillbox-labs/skillbox/internal/branding"
	"github.com/skillbox-labs/skillbox/internal/logging"
	"github.com/skillbox-labs/skillbox/internal/platform"
	"github.com/skillbox-labs/skillbox/internal/registry"
	"github.com/skillbox-labs/skillbox/internal/skill"
	"github.com/skillbox-labs/skillbox/internal/telemetry"
)

// Options control one engine invocation. Zero values fall back to
// environment variables and defaults.
type Options struct {
	RootDir         string
	RunID           string
	AgentID         string
	Coordinator     bool
	ConfigOverrides map[string]any
	Invocation      map[string]any
}

// DefaultAgentID is used when neither the caller nor the environment names
// an agent. By convention agent0 is the run's coordinator.
const DefaultAgentID = "agent0"

// NewRunID derives a default run id: UTC compact timestamp plus a short
// random suffix, e.g. "20260830T153045Z_3fa9c1d2".
func NewRunID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return time.Now().UTC().Format("20060102T150405Z") + "_" + suffix
}

// BuildContext allocates the run directory layout, wires the telemetry
// stores and logger, merges configuration, and writes the run metadata
// files. The returned closer releases the run's log file.
//
// Layout: outputs/<skill>/<runId>/{shared/, agents/<agentId>/work/}.
func BuildContext(skillName string, opts Options) (*skill.RunContext, func() error, error) {
	cfg, err := platform.Load(opts.RootDir)
	if err != nil {
		return nil, nil, err
	}

	m, err := registry.Resolve(skillName, cfg.SkillRoots())
	if err != nil {
		return nil, nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = os.Getenv(branding.EnvVar("RUN_ID"))
	}
	if runID == "" {
		runID = NewRunID()
	}
	agentID := opts.AgentID
	if agentID == "" {
		agentID = os.Getenv(branding.EnvVar("AGENT_ID"))
	}
	if agentID == "" {
		agentID = DefaultAgentID
	}
	isCoordinator := opts.Coordinator ||
		os.Getenv(branding.EnvVar("COORDINATOR")) == "1" ||
		agentID == DefaultAgentID

	runDir := filepath.Join(cfg.OutputsDir, skillName, runID)
	sharedDir := filepath.Join(runDir, "shared")
	agentDir := filepath.Join(runDir, "agents", agentID)
	workDir := filepath.Join(agentDir, "work")
	for _, dir := range []string{sharedDir, workDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating run directory %s: %w", dir, err)
		}
	}

	// Export run identity so nested invocations and spawned workers join
	// the same run. Browser binaries are pinned platform-wide.
	os.Setenv(branding.EnvVar("RUN_ID"), runID)
	os.Setenv(branding.EnvVar("AGENT_ID"), agentID)
	os.Setenv("PLAYWRIGHT_BROWSERS_PATH", cfg.BrowsersDir)

	log, closeLog, err := logging.NewRunLogger(
		filepath.Join(cfg.LogsDir, skillName, runID), agentID+".log", cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	log = log.With("skill", skillName, "run_id", runID, "agent_id", agentID)

	meta := telemetry.Meta{Skill: skillName, RunID: runID, AgentID: agentID}
	events := telemetry.NewEventBus(
		telemetry.NewEventLog(filepath.Join(agentDir, "events.jsonl"), meta),
		telemetry.NewEventLog(filepath.Join(sharedDir, "events.jsonl"), meta),
	)
	memory := telemetry.NewMemoryStore(
		telemetry.NewMemoryLog(filepath.Join(agentDir, "memory.jsonl"), meta),
		telemetry.NewMemoryLog(filepath.Join(sharedDir, "memory.jsonl"), meta),
	)
	artifacts, err := telemetry.NewArtifactStore(agentDir, sharedDir, meta)
	if err != nil {
		closeLog()
		return nil, nil, err
	}

	skillCfg := loadSkillConfig(m.SkillDir)
	merged := MergeConfig(skillCfg, opts.ConfigOverrides)

	runMeta := telemetry.RunMeta{
		Skill:       skillName,
		RunID:       runID,
		RootDir:     cfg.RootDir,
		AgentID:     agentID,
		StartedAt:   time.Now().UTC().Format("20060102T150405Z"),
		Coordinator: isCoordinator,
	}
	if _, err := telemetry.WriteAgentMeta(agentDir, runMeta, merged); err != nil {
		closeLog()
		return nil, nil, err
	}
	if isCoordinator {
		if _, err := telemetry.WriteSharedRunMeta(sharedDir, runMeta); err != nil {
			closeLog()
			return nil, nil, err
		}
	}

	rc := &skill.RunContext{
		SkillName:     skillName,
		RunID:         runID,
		AgentID:       agentID,
		Config:        merged,
		Platform:      cfg,
		SkillDir:      m.SkillDir,
		RunDir:        runDir,
		SharedDir:     sharedDir,
		AgentDir:      agentDir,
		WorkDir:       workDir,
		OutputsDir:    agentDir,
		IsCoordinator: isCoordinator,
		Log:           log,
		Events:        events,
		Memory:        memory,
		Artifacts:     artifacts,
	}
	return rc, closeLog, nil
}

// RunSkill executes one skill end to end and returns the result mapping.
// On handler failure an error result record is persisted before the error
// is returned, so callers polling for completion never see "no result".
func RunSkill(ctx context.Context, skillName string, opts Options) (map[string]any, error) {
	rc, closeLog, err := BuildContext(skillName, opts)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	resultPath := filepath.Join(rc.AgentDir, "result.json")

	// Persist the exact request that triggered this run for traceability.
	request := map[string]any{
		"skill":            skillName,
		"run_id":           rc.RunID,
		"agent_id":         rc.AgentID,
		"config":           rc.Config,
		"config_overrides": orEmpty(opts.ConfigOverrides),
		"invocation":       orEmpty(opts.Invocation),
	}
	if _, err := rc.Artifacts.WriteJSON("work/request.json", request, telemetry.ScopeAgent); err != nil {
		return nil, err
	}

	rc.Events.Emit(telemetry.ScopeAgent, telemetry.Event{Name: "skill.start", Message: "skill started"})
	rc.Memory.Append(telemetry.ScopeAgent, map[string]any{"type": "skill.start", "message": "skill started"})

	res, runErr := invoke(ctx, rc)
	if runErr != nil {
		// The error result record is persisted and also returned, so
		// callers can surface one parseable result object on any outcome.
		// A write failure here is swallowed so the original error is not
		// masked.
		errRes := errorResult(rc, runErr)
		_ = writeJSONFile(resultPath, errRes)
		rc.Log.Error("skill failed", "error", runErr)
		// Telemetry must not mask the original failure.
		_, _ = rc.Events.Emit(telemetry.ScopeAgent, telemetry.Event{
			Name: "skill.error", Message: runErr.Error(), Level: "ERROR",
		})
		return errRes, fmt.Errorf("skill %s failed: %w", skillName, runErr)
	}

	if res == nil {
		res = map[string]any{"status": "ok"}
	}
	if _, ok := res["status"]; !ok {
		res["status"] = "ok"
	}
	setDefault(res, "run_id", rc.RunID)
	setDefault(res, "skill", skillName)
	setDefault(res, "agent_id", rc.AgentID)
	setDefault(res, "outputs_dir", rc.OutputsDir)

	if err := writeJSONFile(resultPath, res); err != nil {
		return nil, fmt.Errorf("persisting result for %s: %w", skillName, err)
	}
	rc.Events.Emit(telemetry.ScopeAgent, telemetry.Event{
		Name: "skill.end", Message: "skill finished",
		Data: map[string]any{"status": res["status"]},
	})
	return res, nil
}

// invoke resolves the manifest entry to a registered handler and calls it,
// converting panics into errors so the failure path always persists a
// result record.
func invoke(ctx context.Context, rc *skill.RunContext) (res map[string]any, err error) {
	m, rerr := registry.Resolve(rc.SkillName, rc.Platform.SkillRoots())
	if rerr != nil {
		return nil, rerr
	}
	module, fn, perr := registry.ParseEntry(m.Entry)
	if perr != nil {
		return nil, perr
	}
	handler, lerr := skill.Lookup(rc.SkillName, module, fn)
	if lerr != nil {
		return nil, lerr
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v\n%s", r, debug.Stack())
		}
	}()
	return handler(ctx, rc)
}

// errorResult builds the error result record for a failed run.
func errorResult(rc *skill.RunContext, runErr error) map[string]any {
	return map[string]any{
		"status":    "error",
		"skill":     rc.SkillName,
		"run_id":    rc.RunID,
		"agent_id":  rc.AgentID,
		"error":     runErr.Error(),
		"traceback": errorChain(runErr),
	}
}

// errorChain renders the unwrap chain of an error, innermost last.
func errorChain(err error) string {
	var parts []string
	for e := err; e != nil; {
		parts = append(parts, e.Error())
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return strings.Join(parts, "\ncaused by: ")
}

func setDefault(m map[string]any, key string, value any) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
