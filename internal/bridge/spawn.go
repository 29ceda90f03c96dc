package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/skillbox-labs/skillbox/internal/telemetry"
	"github.com/skillbox-labs/skillbox/internal/userdata"
)

// freePort asks the kernel for a free local port by binding port 0.
// Best-effort: another process may grab the port before the worker binds
// it, in which case the health poll below reports the failure.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("picking free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// findNode locates the Node.js binary the worker scripts run under.
func findNode() (string, error) {
	node, err := exec.LookPath("node")
	if err != nil {
		return "", fmt.Errorf("worker requires Node.js in PATH: %w", err)
	}
	return node, nil
}

// workerEnv builds the environment for a spawned worker: the inherited
// process environment, the pinned browser-binaries location, and any
// skill-local tokens.env secrets.
func (b *Bridge) workerEnv() []string {
	env := os.Environ()
	env = userdata.SetEnv(env, "PLAYWRIGHT_BROWSERS_PATH", b.rc.Platform.BrowsersDir)
	return userdata.LoadSkillTokens(env, b.rc.SkillDir)
}

// sessionServerArgs translates browser init options from the payload into
// the worker's command-line flags.
func sessionServerArgs(serverJS, host string, port int, userDataDir string, payload map[string]any) []string {
	headless := false
	if v, ok := payload["headless"]; ok && v != nil {
		headless = CoerceBool(v)
	}
	args := []string{
		serverJS,
		"--host", host,
		"--port", strconv.Itoa(port),
		"--headless", strconv.FormatBool(headless),
		"--userDataDir", userDataDir,
	}
	if v := toString(payload["channel"]); v != "" {
		args = append(args, "--channel", v)
	}
	if v := toString(payload["executablePath"]); v != "" {
		args = append(args, "--executablePath", v)
	}
	if v, ok := payload["slowMo"]; ok && v != nil {
		args = append(args, "--slowMo", strconv.Itoa(toInt(v)))
	}
	if v, ok := payload["timeout"]; ok && v != nil {
		args = append(args, "--timeout", strconv.Itoa(toInt(v)))
	}
	if v := toString(payload["storageStatePath"]); v != "" {
		args = append(args, "--storageStatePath", v)
	}
	if v, ok := payload["viewport"]; ok && v != nil {
		if data, err := json.Marshal(v); err == nil {
			args = append(args, "--viewport", string(data))
		}
	}
	if v, ok := payload["args"]; ok && v != nil {
		if data, err := json.Marshal(v); err == nil {
			args = append(args, "--args", string(data))
		}
	}
	return args
}

// spawnSessionServer starts the worker as a detached process (it must be
// able to outlive the orchestrator) and polls its health endpoint with a
// bounded wall-clock budget. An unhealthy-but-spawned session is still
// returned and persisted: later calls may succeed once the worker is up.
func (b *Bridge) spawnSessionServer(ctx context.Context, spec SessionSpec, payload map[string]any) (*SessionState, error) {
	serverJS := filepath.Join(b.integrationRoot(), "cli", sessionServerJS)
	if _, err := os.Stat(serverJS); err != nil {
		return nil, fmt.Errorf("missing worker session server %s: %w", serverJS, err)
	}

	node, err := findNode()
	if err != nil {
		return nil, err
	}

	host := spec.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := spec.Port
	if port == 0 {
		port, err = freePort()
		if err != nil {
			return nil, err
		}
	}

	// Prefer a run-shared profile so login state persists across
	// invocations and agents; an explicit dir or agent scope overrides.
	var userDataDir string
	if v := toString(payload["userDataDir"]); v != "" {
		userDataDir = v
	} else if spec.UserDataScope == "agent" {
		userDataDir = filepath.Join(b.rc.AgentDir, "pw_user_data")
	} else {
		userDataDir = filepath.Join(b.rc.SharedDir, "pw_user_data")
	}
	if err := os.MkdirAll(userDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating user data directory %s: %w", userDataDir, err)
	}

	args := sessionServerArgs(serverJS, host, port, userDataDir, payload)

	// Keep server output as an artifact for later debugging.
	logPath, err := b.rc.Artifacts.WriteText("work/session_server.log", "", telemetry.ScopeAgent)
	if err != nil {
		return nil, err
	}
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening worker log %s: %w", logPath, err)
	}
	defer logFile.Close()

	b.rc.Log.Info("starting worker session server", "host", host, "port", port)
	b.rc.Events.Emit(telemetry.ScopeAgent, telemetry.Event{
		Name: "session.start",
		Data: map[string]any{"host": host, "port": port, "userDataDir": userDataDir},
	})

	cmd := exec.Command(node, args...)
	cmd.Dir = b.integrationRoot()
	cmd.Env = b.workerEnv()
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = detachSysProcAttr()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting worker session server: %w", err)
	}
	pid := cmd.Process.Pid
	// Detach fully; the worker's lifetime is managed via HTTP, not Wait.
	_ = cmd.Process.Release()

	baseURL := fmt.Sprintf("http://%s:%d", host, port)
	deadline := time.Now().Add(startPollBudget)
	for time.Now().Before(deadline) {
		if isHealthy(ctx, baseURL) {
			break
		}
		time.Sleep(startPollInterval)
	}

	st := &SessionState{
		BaseURL:     baseURL,
		Host:        host,
		Port:        port,
		PID:         pid,
		UserDataDir: userDataDir,
		StartedAt:   time.Now().Unix(),
	}
	b.saveState(st)
	b.rc.Artifacts.RecordPath(b.statePath(), telemetry.ScopeShared, "session", map[string]any{"tool": "webrunner"})

	if !isHealthy(ctx, baseURL) {
		b.rc.Log.Warn("worker session server not healthy yet; it may still be starting",
			"baseUrl", baseURL, "pid", pid)
	}
	return st, nil
}
