package engine

import (
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// loadSkillConfig reads optional skill-local configuration from
// <skillDir>/config.yaml. A missing or unreadable file yields an empty map
// so skills without configuration remain runnable.
func loadSkillConfig(skillDir string) map[string]any {
	data, err := os.ReadFile(filepath.Join(skillDir, "config.yaml"))
	if err != nil {
		return map[string]any{}
	}
	var cfg map[string]any
	if err := yaml.Unmarshal(data, &cfg); err != nil || cfg == nil {
		return map[string]any{}
	}
	return cfg
}

// MergeConfig shallow-merges overrides onto base: an override key replaces
// the base value entirely, including nested maps. Shallow replacement keeps
// the merge predictable and stable.
func MergeConfig(base, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
