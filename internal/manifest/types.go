package manifest

// FileName is the manifest file expected in every skill directory.
const FileName = "skill.json"

// DefaultEntry is assumed when a manifest omits the entry reference.
const DefaultEntry = "main:run"

// Skill describes one discovered skill. Name is the identity: it must be
// unique across all skill roots, and the first root to declare a name wins.
// A Skill is immutable once loaded; discovery re-reads manifests on every
// call rather than caching.
type Skill struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Description  string         `json:"description"`
	Entry        string         `json:"entry"`
	Capabilities map[string]any `json:"capabilities,omitempty"`

	// Filled in by discovery, not by the manifest file itself.
	SkillDir   string `json:"-"`
	OwningRoot string `json:"-"`
}
