package bridge

import (
	"context"
	"net/http"
	"os"

	"github.com/skillbox-labs/skillbox/internal/telemetry"
)

// EnsureSession returns a live worker session, reusing the recorded one when
// its health probe answers and spawning a fresh worker otherwise. Reuse is
// byte-identical: a healthy recorded state is returned as-is, never rewritten.
func (b *Bridge) EnsureSession(ctx context.Context, spec SessionSpec, payload map[string]any) (*SessionState, error) {
	if st := b.loadState(); st != nil {
		if isHealthy(ctx, st.BaseURL) {
			b.rc.Log.Debug("reusing worker session", "baseUrl", st.BaseURL, "pid", st.PID)
			return st, nil
		}
		b.rc.Log.Info("recorded session is not responding; starting a new worker",
			"baseUrl", st.BaseURL, "pid", st.PID)
		b.saveState(nil)
	}
	return b.spawnSessionServer(ctx, spec, payload)
}

// Call invokes one worker method against an established session. The worker's
// response map is always returned, error or not, so callers can inspect
// partial results (e.g. a needs-human page state attached to the failure).
func (b *Bridge) Call(ctx context.Context, st *SessionState, method string, params map[string]any) (map[string]any, error) {
	res := jsonHTTP(ctx, http.MethodPost, st.BaseURL+"/call",
		map[string]any{"method": method, "params": params}, callTimeout)
	if ok, _ := res["ok"].(bool); !ok {
		reason := toString(res["error"])
		if reason == "" {
			reason = "unknown worker error"
		}
		return res, &CallError{Method: method, Reason: reason}
	}
	return res, nil
}

// CloseSession asks the worker to shut down and always clears the recorded
// state. If the worker ignores the request and a pid is on record, the
// process is killed directly; either way the state file is gone afterwards,
// so a wedged worker can never block future sessions.
func (b *Bridge) CloseSession(ctx context.Context) map[string]any {
	st := b.loadState()
	if st == nil {
		return map[string]any{"ok": true, "status": "no_session"}
	}

	res := jsonHTTP(ctx, http.MethodPost, st.BaseURL+"/close", nil, closeTimeout)
	if ok, _ := res["ok"].(bool); !ok && st.PID > 0 {
		if proc, err := os.FindProcess(st.PID); err == nil {
			_ = proc.Kill()
		}
	}
	b.saveState(nil)

	b.rc.Events.Emit(telemetry.ScopeAgent, telemetry.Event{
		Name: "session.close",
		Data: map[string]any{"baseUrl": st.BaseURL, "pid": st.PID},
	})
	b.rc.Log.Info("worker session closed", "baseUrl", st.BaseURL)
	return map[string]any{"ok": true, "status": "closed", "baseUrl": st.BaseURL, "pid": st.PID}
}

// Status reports the recorded session plus a fresh liveness probe.
func (b *Bridge) Status(ctx context.Context) map[string]any {
	st := b.loadState()
	if st == nil {
		return map[string]any{"active": false}
	}
	return map[string]any{
		"active":      true,
		"healthy":     isHealthy(ctx, st.BaseURL),
		"baseUrl":     st.BaseURL,
		"host":        st.Host,
		"port":        st.Port,
		"pid":         st.PID,
		"userDataDir": st.UserDataDir,
		"startedAt":   st.StartedAt,
	}
}

// RunSession executes one sessionful worker interaction. Pure lifecycle
// commands (start, close, status, ...) short-circuit without touching the
// action; the default "call" command ensures a session, invokes method with
// the payload's action options, snapshots storage state when asked, archives
// the response, and replays any trace the worker produced into telemetry.
func (b *Bridge) RunSession(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	spec, _ := ExtractSessionSpec(payload)

	if isSessionCommand(spec.Command) {
		switch spec.Command {
		case "start", "open":
			st, err := b.EnsureSession(ctx, spec, payload)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"ok":      true,
				"status":  "started",
				"baseUrl": st.BaseURL,
				"pid":     st.PID,
				"healthy": isHealthy(ctx, st.BaseURL),
			}, nil
		case "close", "stop", "shutdown":
			return b.CloseSession(ctx), nil
		default: // status, health
			return b.Status(ctx), nil
		}
	}

	st, err := b.EnsureSession(ctx, spec, payload)
	if err != nil {
		return nil, err
	}

	res, callErr := b.Call(ctx, st, method, actionOptions(payload))

	// Persist cookies/localStorage when the caller asked for it, even after
	// a failed action: a login that half-succeeded is still worth keeping.
	if snap := toString(payload["saveStorageStatePath"]); snap != "" {
		snap = b.resolvePath(snap)
		if _, err := b.Call(ctx, st, "saveStorageState", map[string]any{"path": snap}); err != nil {
			b.rc.Log.Warn("storage state snapshot failed", "path", snap, "error", err)
		} else {
			b.rc.Artifacts.RecordPath(snap, telemetry.ScopeAgent, "storage_state", nil)
		}
	}

	if res != nil {
		if _, err := b.rc.Artifacts.WriteJSON("work/"+method+"_response.json", res, telemetry.ScopeAgent); err != nil {
			b.rc.Log.Warn("archiving worker response failed", "method", method, "error", err)
		}
		b.indexResultPaths(res)
	}
	// The trace is declared by the caller; the worker may also echo it back.
	tracePath := toString(payload["tracePath"])
	if tracePath == "" && res != nil {
		tracePath = toString(res["tracePath"])
	}
	if tracePath != "" {
		b.replayTrace(tracePath)
	}
	return res, callErr
}
