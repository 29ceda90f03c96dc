package registry

import (
	"errors"
	"fmt"

	"github.com/skillbox-labs/skillbox/internal/manifest"
)

// ErrNotFound is returned when no discovered manifest matches a skill name.
var ErrNotFound = errors.New("skill not found")

// Resolve returns the manifest for the named skill, searching the given
// roots in order.
func Resolve(name string, roots []string) (*manifest.Skill, error) {
	for _, m := range Discover(roots) {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("skill %q not found under skill roots: %w", name, ErrNotFound)
}
