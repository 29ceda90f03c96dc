// Package platform resolves the directory layout and settings shared by
// every run: skill roots, outputs, logs, dependency and browser-binary
// locations, with independent environment overrides for each.
package platform
