// Package userdata builds the environment handed to spawned worker
// processes: inherited process environment, platform variables, and
// skill-local secrets from tokens.env files.
package userdata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// TokensFile is the optional per-skill secrets file loaded into worker
// environments. It is never read into the orchestrator's own process
// environment.
const TokensFile = "tokens.env"

// SetEnv sets or replaces a variable in an environment slice.
func SetEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// LoadSkillTokens merges variables from <skillDir>/tokens.env into env.
// A missing or malformed file is ignored: secrets are optional and their
// absence must not fail a run.
func LoadSkillTokens(env []string, skillDir string) []string {
	path := filepath.Join(skillDir, TokensFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return env
	}
	vars, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return env
	}
	for k, v := range vars {
		if k != "" && v != "" {
			env = SetEnv(env, k, v)
		}
	}
	return env
}
