// Package registry discovers skill manifests across one or more skill
// roots and resolves or validates them by name.
package registry
