package skill

import (
	"errors"
	"fmt"
	"sync"
)

// Errors reported by handler lookup. These are the compiled-registry
// renditions of a missing module import and a missing entry function.
var (
	ErrModuleNotRegistered = errors.New("skill module is not registered")
	ErrMissingEntryPoint   = errors.New("missing entry function")
)

var (
	mu      sync.RWMutex
	modules = make(map[string]Module)
)

func moduleKey(skillName, moduleName string) string {
	return skillName + "/" + moduleName
}

// Register makes a module's entry functions available for a skill.
// Handler packages call this from init or from explicit wiring in the CLI.
// Re-registering a key replaces the previous module.
func Register(skillName, moduleName string, m Module) {
	mu.Lock()
	defer mu.Unlock()
	modules[moduleKey(skillName, moduleName)] = m
}

// Unregister removes a registered module. Primarily for tests.
func Unregister(skillName, moduleName string) {
	mu.Lock()
	defer mu.Unlock()
	delete(modules, moduleKey(skillName, moduleName))
}

// Lookup resolves a handler for the given skill, module and function name.
func Lookup(skillName, moduleName, fn string) (HandlerFunc, error) {
	mu.RLock()
	defer mu.RUnlock()

	m, ok := modules[moduleKey(skillName, moduleName)]
	if !ok {
		return nil, fmt.Errorf("no handler module %q for skill %q: %w", moduleName, skillName, ErrModuleNotRegistered)
	}
	h, ok := m[fn]
	if !ok || h == nil {
		return nil, fmt.Errorf("module %q of skill %q has no function %q: %w", moduleName, skillName, fn, ErrMissingEntryPoint)
	}
	return h, nil
}
