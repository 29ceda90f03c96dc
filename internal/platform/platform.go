package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/skillbox-labs/skillbox/internal/branding"
)

// Config holds the resolved platform directory layout and settings.
// Every path can be overridden independently via SKILLBOX_* environment
// variables; see Load.
type Config struct {
	RootDir     string
	SkillsDir   string
	OutputsDir  string
	LogsDir     string
	DepsDir     string
	BrowsersDir string
	LogLevel    string
}

// Viper keys. Environment overrides follow the branding prefix, e.g.
// skills_dir -> SKILLBOX_SKILLS_DIR.
const (
	keySkillsDir  = "skills_dir"
	keyOutputsDir = "outputs_dir"
	keyLogsDir    = "logs_dir"
	keyDepsDir    = "deps_dir"
	keyLogLevel   = "log_level"
)

// Load resolves the platform configuration for the given project root.
// An empty rootDir defaults to the current working directory.
//
// The common directories are created early so the rest of the runtime can
// assume they exist.
func Load(rootDir string) (*Config, error) {
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		rootDir = wd
	}
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving root directory %s: %w", rootDir, err)
	}

	v := viper.New()
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	// Optional project-level settings file. Precedence: env > file > default.
	v.SetConfigFile(filepath.Join(rootDir, "platform.yaml"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading platform config: %w", err)
		}
	}

	v.SetDefault(keySkillsDir, filepath.Join(rootDir, "skills"))
	v.SetDefault(keyOutputsDir, filepath.Join(rootDir, "outputs"))
	v.SetDefault(keyLogsDir, filepath.Join(rootDir, "logs"))
	v.SetDefault(keyDepsDir, filepath.Join(rootDir, "runtime", "deps"))
	v.SetDefault(keyLogLevel, "info")

	cfg := &Config{
		RootDir:    rootDir,
		SkillsDir:  v.GetString(keySkillsDir),
		OutputsDir: v.GetString(keyOutputsDir),
		LogsDir:    v.GetString(keyLogsDir),
		DepsDir:    v.GetString(keyDepsDir),
		LogLevel:   v.GetString(keyLogLevel),
	}

	// Browser binaries live under deps unless pinned externally. The same
	// location is forwarded to spawned workers so everyone shares one set
	// of binaries.
	if p := os.Getenv("PLAYWRIGHT_BROWSERS_PATH"); p != "" {
		cfg.BrowsersDir = p
	} else {
		cfg.BrowsersDir = filepath.Join(cfg.DepsDir, "playwright_browsers")
	}

	for _, dir := range []string{cfg.OutputsDir, cfg.LogsDir, cfg.DepsDir, cfg.BrowsersDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating platform directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// SkillRoots returns the ordered list of skill roots: the project root first,
// then any extra roots from SKILLBOX_SKILL_PATHS (path-list separated).
// Ordering is significant: during discovery the first root to declare a skill
// name wins.
func (c *Config) SkillRoots() []string {
	roots := []string{c.RootDir}
	extra := os.Getenv(branding.EnvVar("SKILL_PATHS"))
	for _, item := range strings.Split(extra, string(os.PathListSeparator)) {
		item = strings.TrimSpace(strings.Trim(strings.TrimSpace(item), `"`))
		if item == "" {
			continue
		}
		abs, err := filepath.Abs(item)
		if err != nil {
			continue
		}
		if !containsString(roots, abs) {
			roots = append(roots, abs)
		}
	}
	return roots
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
