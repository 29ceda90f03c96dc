// Package webauto is the built-in browser-automation skill. It bridges skill
// invocations onto the Node/Playwright worker so the heavy automation logic
// stays in the worker while the platform handles runs, telemetry and config.
package webauto

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/skillbox-labs/skillbox/internal/bridge"
	"github.com/skillbox-labs/skillbox/internal/skill"
)

// SkillName matches the manifest under skills/web_automation.
const SkillName = "web_automation"

// Register wires this skill's entry functions into the handler registry.
// Called once from CLI startup.
func Register() {
	skill.Register(SkillName, "main", skill.Module{
		"run": Run,
	})
}

// Run executes one web-automation invocation. The action and its options
// come from the merged skill config; session configuration selects between
// a persistent worker session and a one-shot worker spawn.
func Run(ctx context.Context, rc *skill.RunContext) (map[string]any, error) {
	payload := make(map[string]any, len(rc.Config))
	for k, v := range rc.Config {
		payload[k] = v
	}

	action := "adaptiveSearch"
	if v, ok := payload["action"].(string); ok && strings.TrimSpace(v) != "" {
		action = strings.TrimSpace(v)
	}

	br := bridge.New(rc)
	spec, hasSession := bridge.ExtractSessionSpec(payload)
	sessionEnabled := hasSession && spec.Enabled

	// Pure session-lifecycle commands skip action defaulting entirely.
	if sessionEnabled && spec.Command != "call" {
		out, err := br.RunSession(ctx, action, payload)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "ok", "action": action, "session": out}, nil
	}

	if err := applyActionDefaults(action, payload, rc); err != nil {
		return nil, err
	}

	if sessionEnabled {
		out, err := br.RunSession(ctx, action, payload)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "ok", "action": action, "session": out}, nil
	}

	out, err := br.RunOnce(ctx, action, payload)
	if err != nil {
		return nil, err
	}

	status := "ok"
	if action == "inspectPage" && pageBlocked(out) {
		status = "needs_human"
	}
	return map[string]any{"status": status, "action": action, "result": out}, nil
}

// applyActionDefaults validates required inputs per action and fills in the
// conventional trace and capture locations under the agent's work directory.
func applyActionDefaults(action string, payload map[string]any, rc *skill.RunContext) error {
	setDefault := func(k string, v any) {
		if _, ok := payload[k]; !ok {
			payload[k] = v
		}
	}

	switch action {
	case "webSearch", "adaptiveSearch":
		if s, _ := payload["query"].(string); strings.TrimSpace(s) == "" {
			return fmt.Errorf("config must include `query` when action is %s", action)
		}
		setDefault("tracePath", filepath.Join(rc.WorkDir, "rpa_trace.jsonl"))
	case "inspectPage":
		if s, _ := payload["url"].(string); strings.TrimSpace(s) == "" {
			return fmt.Errorf("config must include `url` when action is inspectPage")
		}
		setDefault("tracePath", filepath.Join(rc.WorkDir, "rpa_trace.jsonl"))
		setDefault("capturePrefix", filepath.Join(rc.WorkDir, "captures", "page"))
		setDefault("captureFullPage", true)
		setDefault("includeHtml", true)
		setDefault("includeAccessibility", true)
		setDefault("includeElements", true)
		setDefault("detectBlockers", true)
		// A human cannot solve a captcha in a headless window.
		if bridge.CoerceBool(payload["pauseForHuman"]) {
			setDefault("headless", false)
		}
	default:
		// Other actions (e.g. searchOnSite) pass their config through as-is.
		setDefault("tracePath", filepath.Join(rc.WorkDir, "rpa_trace.jsonl"))
	}
	return nil
}

// pageBlocked reports whether an inspectPage result flagged a blocker page
// (captcha, login wall) that needs a human to resolve.
func pageBlocked(out map[string]any) bool {
	resp, ok := out["response"].(map[string]any)
	if !ok {
		return false
	}
	blocked, _ := resp["blocked"].(bool)
	return blocked
}
