// Package manifest defines the skill.json manifest model: parsing with
// defaults, JSON-schema validation, and semver version checks.
package manifest
