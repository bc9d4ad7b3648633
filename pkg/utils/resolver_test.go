package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolve(t *testing.T) {
	base := canonicalize(t.TempDir())

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "relative file",
			input:    "app.exe",
			expected: filepath.Join(base, "app.exe"),
		},
		{
			name:     "nested relative path",
			input:    filepath.Join("data", "x.txt"),
			expected: filepath.Join(base, "data", "x.txt"),
		},
		{
			name:     "dot path gets cleaned",
			input:    "./app.exe",
			expected: filepath.Join(base, "app.exe"),
		},
		{
			name:     "double dot path gets cleaned",
			input:    filepath.Join("data", "..", "app.exe"),
			expected: filepath.Join(base, "app.exe"),
		},
		{
			name:     "absolute path ignores base",
			input:    filepath.Join(base, "elsewhere", "..", "other.exe"),
			expected: filepath.Join(base, "other.exe"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.input, base); got != tt.expected {
				t.Errorf("Expected path %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver, err := NewResolver(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}

	first := resolver.Resolve(filepath.Join("a", "..", "b", "c.txt"))
	second := resolver.Resolve(filepath.Join("a", "..", "b", "c.txt"))
	if first != second {
		t.Errorf("resolution not repeatable: %q vs %q", first, second)
	}
	if again := resolver.Resolve(first); again != first {
		t.Errorf("resolving a resolved path changed it: %q -> %q", first, again)
	}
}

func TestResolveFollowsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}

	base := canonicalize(t.TempDir())
	target := filepath.Join(base, "real")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(base, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	if got := Resolve("link", base); got != target {
		t.Errorf("expected symlink to resolve to %q, got %q", target, got)
	}

	// The missing tail is kept while the existing prefix is still evaluated.
	expected := filepath.Join(target, "missing", "file.txt")
	if got := Resolve(filepath.Join("link", "missing", "file.txt"), base); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestNewResolverMakesBaseAbsolute(t *testing.T) {
	resolver, err := NewResolver("")
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}
	if !filepath.IsAbs(resolver.Base()) {
		t.Errorf("expected absolute base, got %q", resolver.Base())
	}

	wd, err := NewWorkingDirResolver()
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}
	if wd.Base() != resolver.Base() {
		t.Errorf("empty base should equal working directory: %q vs %q", resolver.Base(), wd.Base())
	}
}

func TestResolversDoNotShareBase(t *testing.T) {
	first, _ := NewResolver(t.TempDir())
	second, _ := NewResolver(t.TempDir())

	if first.Resolve("x") == second.Resolve("x") {
		t.Error("resolvers with different bases resolved to the same path")
	}
}
