package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/skillbox-labs/skillbox/internal/telemetry"
)

// ErrWorkerFailed reports a one-shot worker invocation that exited non-zero.
var ErrWorkerFailed = errors.New("worker invocation failed")

// RunOnce invokes the worker in one-shot mode: spawn, run one action against
// a fresh browser, exit. No session state is involved. The action input and
// output files, plus the worker's stdout/stderr on failure, are archived as
// artifacts, and any trace the worker wrote is replayed into telemetry.
func (b *Bridge) RunOnce(ctx context.Context, action string, payload map[string]any) (map[string]any, error) {
	runnerJS := filepath.Join(b.integrationRoot(), "cli", oneShotRunnerJS)
	if _, err := os.Stat(runnerJS); err != nil {
		return nil, fmt.Errorf("missing worker runner %s: %w", runnerJS, err)
	}
	node, err := findNode()
	if err != nil {
		return nil, err
	}

	inputPath, err := b.rc.Artifacts.WriteJSON("work/"+action+"_input.json", payload, telemetry.ScopeAgent)
	if err != nil {
		return nil, err
	}
	outputPath := filepath.Join(b.rc.WorkDir, action+"_output.json")

	args := []string{
		runnerJS,
		"--action", action,
		"--input", inputPath,
		"--output", outputPath,
	}
	if v, ok := payload["headless"]; ok && v != nil {
		if CoerceBool(v) {
			args = append(args, "--headless")
		}
	}
	if v := toString(payload["channel"]); v != "" {
		args = append(args, "--channel", v)
	}
	if v := toString(payload["executablePath"]); v != "" {
		args = append(args, "--executablePath", v)
	}

	b.rc.Log.Info("running one-shot worker action", "action", action)
	b.rc.Events.Emit(telemetry.ScopeAgent, telemetry.Event{
		Name: "rpa.invoke",
		Data: map[string]any{"action": action, "mode": "oneshot"},
	})

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, node, args...)
	cmd.Dir = b.integrationRoot()
	cmd.Env = b.workerEnv()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if stdout.Len() > 0 {
		_, _ = b.rc.Artifacts.WriteBytes("work/"+action+"_stdout.log", stdout.Bytes(), telemetry.ScopeAgent)
	}
	if stderr.Len() > 0 {
		_, _ = b.rc.Artifacts.WriteBytes("work/"+action+"_stderr.log", stderr.Bytes(), telemetry.ScopeAgent)
	}
	if runErr != nil {
		return nil, fmt.Errorf("%w: action %q: %v: %s", ErrWorkerFailed, action, runErr, lastLine(stderr.Bytes()))
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("worker produced no output for action %q: %w", action, err)
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding worker output %s: %w", outputPath, err)
	}

	b.rc.Artifacts.RecordPath(outputPath, telemetry.ScopeAgent, "result", map[string]any{"action": action})
	b.indexResultPaths(result)
	tracePath := toString(payload["tracePath"])
	if tracePath == "" {
		tracePath = toString(result["tracePath"])
	}
	if tracePath != "" {
		b.replayTrace(tracePath)
	}
	return result, nil
}

// lastLine extracts the final non-empty line of captured output, the usual
// location of a Node error summary.
func lastLine(out []byte) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte{'\n'})
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
