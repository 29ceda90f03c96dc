package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillbox-labs/skillbox/internal/skill"
)

// writeSkill creates root/skills/<dir>/skill.json with the given body.
func writeSkill(t *testing.T, root, dir, body string) {
	t.Helper()
	skillDir := filepath.Join(root, "skills", dir)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "skill.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscover_OrderingAndDefaults(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "zeta", `{"name": "zeta"}`)
	writeSkill(t, root, "alpha", `{}`)

	skills := Discover([]string{root})
	if len(skills) != 2 {
		t.Fatalf("Discover len = %d, want 2", len(skills))
	}
	if skills[0].Name != "alpha" || skills[1].Name != "zeta" {
		t.Errorf("order = [%s, %s], want [alpha, zeta]", skills[0].Name, skills[1].Name)
	}
	// Unnamed manifests take the directory name.
	if skills[0].SkillDir != filepath.Join(root, "skills", "alpha") {
		t.Errorf("SkillDir = %q", skills[0].SkillDir)
	}
	if skills[0].OwningRoot != root {
		t.Errorf("OwningRoot = %q, want %q", skills[0].OwningRoot, root)
	}
}

func TestDiscover_FirstRootWins(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeSkill(t, rootA, "dup", `{"name": "dup", "version": "1.0.0"}`)
	writeSkill(t, rootB, "dup", `{"name": "dup", "version": "2.0.0"}`)

	skills := Discover([]string{rootA, rootB})
	if len(skills) != 1 {
		t.Fatalf("Discover len = %d, want 1", len(skills))
	}
	if skills[0].Version != "1.0.0" {
		t.Errorf("Version = %q, want first root's 1.0.0", skills[0].Version)
	}
}

func TestDiscover_SkipsBrokenManifests(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "good", `{"name": "good"}`)
	writeSkill(t, root, "broken", `{not json`)

	skills := Discover([]string{root})
	if len(skills) != 1 || skills[0].Name != "good" {
		t.Fatalf("Discover = %v, want only [good]", skills)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	if got := Discover([]string{"/nonexistent/root"}); len(got) != 0 {
		t.Errorf("Discover on missing root = %v, want empty", got)
	}
}

func TestResolve_NotFound(t *testing.T) {
	root := t.TempDir()
	_, err := Resolve("ghost", []string{root})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve error = %v, want ErrNotFound", err)
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		entry   string
		module  string
		fn      string
		wantErr bool
	}{
		{"main:run", "main", "run", false},
		{" main : run ", "main", "run", false},
		{"main", "", "", true},
		{":run", "", "", true},
		{"main:", "", "", true},
		{"a:b:c", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			module, fn, err := ParseEntry(tt.entry)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntry) {
					t.Errorf("ParseEntry(%q) error = %v, want ErrInvalidEntry", tt.entry, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntry(%q) error: %v", tt.entry, err)
			}
			if module != tt.module || fn != tt.fn {
				t.Errorf("ParseEntry(%q) = (%q, %q), want (%q, %q)", tt.entry, module, fn, tt.module, tt.fn)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "wired", `{"name": "wired", "version": "1.0.0", "entry": "main:run"}`)
	writeSkill(t, root, "unwired", `{"name": "unwired", "version": "1.0.0", "entry": "main:run"}`)
	writeSkill(t, root, "badver", `{"name": "badver", "version": "not-semver", "entry": "main:run"}`)

	skill.Register("wired", "main", skill.Module{
		"run": func(ctx context.Context, rc *skill.RunContext) (map[string]any, error) {
			return nil, nil
		},
	})
	t.Cleanup(func() { skill.Unregister("wired", "main") })

	roots := []string{root}

	if err := Validate("wired", roots); err != nil {
		t.Errorf("Validate(wired) error: %v", err)
	}
	if err := Validate("ghost", roots); !errors.Is(err, ErrNotFound) {
		t.Errorf("Validate(ghost) error = %v, want ErrNotFound", err)
	}
	if err := Validate("unwired", roots); !errors.Is(err, skill.ErrModuleNotRegistered) {
		t.Errorf("Validate(unwired) error = %v, want ErrModuleNotRegistered", err)
	}
	if err := Validate("badver", roots); err == nil {
		t.Error("Validate(badver) should fail on non-semver version")
	}
}

func TestValidate_MissingEntryPoint(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "partial", `{"name": "partial", "version": "1.0.0", "entry": "main:missing"}`)

	skill.Register("partial", "main", skill.Module{
		"run": func(ctx context.Context, rc *skill.RunContext) (map[string]any, error) {
			return nil, nil
		},
	})
	t.Cleanup(func() { skill.Unregister("partial", "main") })

	if err := Validate("partial", []string{root}); !errors.Is(err, skill.ErrMissingEntryPoint) {
		t.Errorf("Validate(partial) error = %v, want ErrMissingEntryPoint", err)
	}
}
