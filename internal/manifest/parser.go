package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseFile reads a skill.json manifest and returns the parsed Skill.
// Missing optional fields receive defaults: version "0.0.0", entry "main:run".
// The caller is responsible for filling SkillDir and OwningRoot.
func ParseFile(path string) (*Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse unmarshals manifest bytes. The path is used for error messages only.
func Parse(data []byte, path string) (*Skill, error) {
	var m Skill
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
	if m.Entry == "" {
		m.Entry = DefaultEntry
	}
	if m.Capabilities == nil {
		m.Capabilities = map[string]any{}
	}
	return &m, nil
}
