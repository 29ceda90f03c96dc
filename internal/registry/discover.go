package registry

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/skillbox-labs/skillbox/internal/manifest"
)

// Discover scans each root's skills/ subdirectory for child folders holding
// a skill.json manifest. Manifests that fail to parse are skipped rather
// than failing the whole scan; validation surfaces them later.
//
// Ordering is deterministic: alphabetical within a root, declared root order
// across roots. Names are deduplicated with first-root-wins semantics.
// Results are recomputed on every call; there is no caching.
func Discover(roots []string) []*manifest.Skill {
	var skills []*manifest.Skill
	seen := make(map[string]bool)

	for _, root := range roots {
		skillsDir := filepath.Join(root, "skills")
		entries, err := os.ReadDir(skillsDir)
		if err != nil {
			continue
		}

		var names []string
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, dir := range names {
			skillDir := filepath.Join(skillsDir, dir)
			mfPath := filepath.Join(skillDir, manifest.FileName)
			if _, err := os.Stat(mfPath); err != nil {
				continue
			}
			m, err := manifest.ParseFile(mfPath)
			if err != nil {
				continue
			}
			if m.Name == "" {
				m.Name = dir
			}
			if seen[m.Name] {
				continue
			}
			m.SkillDir = skillDir
			m.OwningRoot = root
			skills = append(skills, m)
			seen[m.Name] = true
		}
	}
	return skills
}
