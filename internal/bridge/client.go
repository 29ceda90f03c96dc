package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Timeouts for the worker protocol. Calls are generous because automation
// flows can legitimately take minutes (e.g. waiting on a human to resolve a
// captcha); health probes and close requests stay short.
const (
	healthProbeTimeout = 1500 * time.Millisecond
	callTimeout        = 300 * time.Second
	closeTimeout       = 2500 * time.Millisecond
	startPollBudget    = 25 * time.Second
	startPollInterval  = 250 * time.Millisecond
)

// CallError reports a failure the worker itself returned from a bridged
// call. It propagates to the caller, who may need to react (e.g. route into
// a needs-human state).
type CallError struct {
	Method string
	Reason string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("worker call %q failed: %s", e.Method, e.Reason)
}

// jsonHTTP performs one JSON request against the worker and decodes the
// response. Transport and decode failures are folded into the worker's own
// response shape ({"ok": false, "error": ...}) so callers handle exactly
// one failure surface.
func jsonHTTP(ctx context.Context, method, url string, payload any, timeout time.Duration) map[string]any {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return map[string]any{"ok": false, "error": err.Error()}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"ok": false, "error": fmt.Sprintf("non-json response: %.2000s", raw)}
	}
	if resp.StatusCode >= 400 {
		if _, ok := out["error"]; !ok {
			out = map[string]any{"ok": false, "error": fmt.Sprintf("http %d: %.2000s", resp.StatusCode, raw)}
		}
	}
	return out
}

// isHealthy probes the worker's health endpoint.
func isHealthy(ctx context.Context, baseURL string) bool {
	res := jsonHTTP(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil, healthProbeTimeout)
	ok, _ := res["ok"].(bool)
	return ok
}
