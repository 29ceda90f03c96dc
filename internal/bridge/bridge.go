package bridge

import (
	"path/filepath"

	"github.com/skillbox-labs/skillbox/internal/skill"
)

// Worker integration layout under the platform root.
const (
	integrationDir  = "webrunner"
	sessionServerJS = "session_server.mjs"
	oneShotRunnerJS = "run.mjs"
)

// browserOptionKeys are payload keys forwarded to the worker as browser
// init options. Everything else is treated as action options.
var browserOptionKeys = map[string]bool{
	"headless":         true,
	"channel":          true,
	"executablePath":   true,
	"slowMo":           true,
	"timeout":          true,
	"proxy":            true,
	"args":             true,
	"viewport":         true,
	"userDataDir":      true,
	"storageStatePath": true,
}

// Bridge proxies one run's calls to the browser-automation worker.
type Bridge struct {
	rc *skill.RunContext
}

// New returns a bridge bound to the given run context. Session state and
// the default user-data directory live under the run's shared directory so
// cooperating agents reuse one worker.
func New(rc *skill.RunContext) *Bridge {
	return &Bridge{rc: rc}
}

// integrationRoot is where the Node worker scripts live.
func (b *Bridge) integrationRoot() string {
	return filepath.Join(b.rc.Platform.RootDir, "integrations", integrationDir)
}

// actionOptions strips browser init options and session config from a
// payload so they are not accidentally passed into action methods.
func actionOptions(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if browserOptionKeys[k] || k == "session" || k == "saveStorageStatePath" {
			continue
		}
		out[k] = v
	}
	return out
}
