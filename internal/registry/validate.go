package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/skillbox-labs/skillbox/internal/manifest"
	"github.com/skillbox-labs/skillbox/internal/skill"
)

// ErrInvalidEntry is returned when a manifest's entry reference is not of
// the form "module:function".
var ErrInvalidEntry = errors.New("invalid entry reference")

// ParseEntry splits an entry reference into module and function names.
func ParseEntry(entry string) (module, fn string, err error) {
	module, fn, found := strings.Cut(entry, ":")
	module = strings.TrimSpace(module)
	fn = strings.TrimSpace(fn)
	if !found || module == "" || fn == "" || strings.Contains(fn, ":") {
		return "", "", fmt.Errorf("entry %q (expected module:function): %w", entry, ErrInvalidEntry)
	}
	return module, fn, nil
}

// Validate resolves the named skill and verifies it is runnable: the
// manifest passes schema validation, the version parses as semver, the
// entry reference is well-formed, and a handler is registered for it.
//
// Failure modes, in order: ErrNotFound, schema issues, invalid version,
// ErrInvalidEntry, skill.ErrModuleNotRegistered, skill.ErrMissingEntryPoint.
func Validate(name string, roots []string) error {
	m, err := Resolve(name, roots)
	if err != nil {
		return err
	}

	res, err := manifest.ValidateFile(filepath.Join(m.SkillDir, manifest.FileName))
	if err != nil {
		return fmt.Errorf("validating manifest for %s: %w", name, err)
	}
	if !res.Valid {
		var parts []string
		for _, issue := range res.Issues {
			parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
		}
		return fmt.Errorf("manifest for %s failed schema validation: %s", name, strings.Join(parts, "; "))
	}

	if err := manifest.CheckVersion(m.Version); err != nil {
		return fmt.Errorf("manifest for %s: %w", name, err)
	}

	module, fn, err := ParseEntry(m.Entry)
	if err != nil {
		return fmt.Errorf("manifest for %s: %w", name, err)
	}
	if _, err := skill.Lookup(m.Name, module, fn); err != nil {
		return err
	}
	return nil
}
