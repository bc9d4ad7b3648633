// =============================================================================
// Easy Enigma Virtual Box Builder - Path Resolver
// =============================================================================
//
// Configuration paths are written relative to the configuration file. The
// Resolver turns them into absolute, canonical paths.
//
// RESOLUTION:
//   - Absolute paths are canonicalized and the base directory is ignored
//   - Relative paths are joined to the base directory, then canonicalized
//   - Canonical means "." and ".." removed and symlinks evaluated
//   - Paths that do not exist never fail: symlinks are evaluated on the
//     longest existing prefix and the rest is appended as written
//
// The base directory belongs to the Resolver value, so builds that use
// different bases never interfere with each other.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolver resolves configuration paths against a fixed base directory.
type Resolver struct {
	base string
}

// NewResolver creates a Resolver rooted at base. A relative base is made
// absolute against the current working directory.
func NewResolver(base string) (*Resolver, error) {
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", base, err)
	}
	return &Resolver{base: canonicalize(abs)}, nil
}

// NewWorkingDirResolver creates a Resolver rooted at the current working directory.
func NewWorkingDirResolver() (*Resolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewResolver(wd)
}

// Base returns the canonical base directory.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve returns the absolute canonical form of path.
func (r *Resolver) Resolve(path string) string {
	return Resolve(path, r.base)
}

// Resolve returns the absolute canonical form of path, joining relative
// paths to base first. base must be absolute.
func Resolve(path, base string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return canonicalize(filepath.Clean(path))
}

// canonicalize evaluates symlinks on the longest existing prefix of an
// absolute, clean path.
func canonicalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(canonicalize(parent), filepath.Base(path))
}
