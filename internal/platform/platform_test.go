package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SKILLBOX_SKILLS_DIR", "")
	t.Setenv("SKILLBOX_OUTPUTS_DIR", "")
	t.Setenv("SKILLBOX_LOG_LEVEL", "")
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.RootDir != root {
		t.Errorf("RootDir = %q, want %q", cfg.RootDir, root)
	}
	if cfg.OutputsDir != filepath.Join(root, "outputs") {
		t.Errorf("OutputsDir = %q", cfg.OutputsDir)
	}
	if cfg.LogsDir != filepath.Join(root, "logs") {
		t.Errorf("LogsDir = %q", cfg.LogsDir)
	}
	if cfg.BrowsersDir != filepath.Join(root, "runtime", "deps", "playwright_browsers") {
		t.Errorf("BrowsersDir = %q", cfg.BrowsersDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}

	// The common directories are created eagerly.
	for _, dir := range []string{cfg.OutputsDir, cfg.LogsDir, cfg.DepsDir, cfg.BrowsersDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	outputs := filepath.Join(t.TempDir(), "custom-outputs")
	browsers := filepath.Join(t.TempDir(), "browsers")
	t.Setenv("SKILLBOX_OUTPUTS_DIR", outputs)
	t.Setenv("SKILLBOX_LOG_LEVEL", "debug")
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", browsers)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.OutputsDir != outputs {
		t.Errorf("OutputsDir = %q, want env override", cfg.OutputsDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.BrowsersDir != browsers {
		t.Errorf("BrowsersDir = %q, want pinned path", cfg.BrowsersDir)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "platform.yaml"), []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("SKILLBOX_LOG_LEVEL", "")
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want file value", cfg.LogLevel)
	}
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "platform.yaml"), []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("SKILLBOX_LOG_LEVEL", "error")
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want env override", cfg.LogLevel)
	}
}

func TestSkillRoots(t *testing.T) {
	root := t.TempDir()
	extraA := t.TempDir()
	t.Setenv("SKILLBOX_SKILL_PATHS", extraA+string(os.PathListSeparator)+extraA)
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	roots := cfg.SkillRoots()
	if len(roots) != 2 {
		t.Fatalf("SkillRoots = %v, want root plus one deduplicated extra", roots)
	}
	if roots[0] != root {
		t.Errorf("roots[0] = %q, want project root first", roots[0])
	}
	if roots[1] != extraA {
		t.Errorf("roots[1] = %q, want %q", roots[1], extraA)
	}
}

func TestSkillRoots_NoExtras(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SKILLBOX_SKILL_PATHS", "")
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if roots := cfg.SkillRoots(); len(roots) != 1 || roots[0] != root {
		t.Errorf("SkillRoots = %v, want just the project root", roots)
	}
}
