// =============================================================================
// Easy Enigma Virtual Box Builder - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a build:
//   - Temporary project files handed to the packager
//   - Keeping a copy of a project file on request
//   - Small filesystem helpers
//
// TEMPORARY PROJECTS:
//   A project file is created with a unique name and the ".evb" suffix. The
//   caller receives a cleanup function together with the path and must defer
//   it immediately, so the file is removed on every exit path.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ProjectSuffix is the file extension the packager expects.
const ProjectSuffix = ".evb"

// =============================================================================
// PROJECT FILES
// =============================================================================

// NewProjectFileName returns a unique project file name.
//
// EXAMPLE:
//   eevb_a1b2c3d4-e5f6-7890-abcd-ef1234567890.evb
func NewProjectFileName() string {
	return "eevb_" + uuid.New().String() + ProjectSuffix
}

// WriteTempProject writes content to a new project file in dir (the system
// temp directory when dir is empty).
//
// RETURNS:
//   - The path to the project file.
//   - A cleanup function removing the file. It is safe to call more than once
//     and is a no-op when an error is returned.
//   - An error if the file cannot be written.
func WriteTempProject(dir string, content []byte) (string, func(), error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, NewProjectFileName())

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create project file: %w", err)
	}

	cleanup := func() {
		_ = os.Remove(path)
	}

	if _, err := file.Write(content); err != nil {
		file.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write project file: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to close project file: %w", err)
	}

	return path, cleanup, nil
}

// KeepProject copies a project file to dst, adding the ".evb" suffix when
// dst has no extension.
func KeepProject(src, dst string) (string, error) {
	if filepath.Ext(dst) == "" {
		dst += ProjectSuffix
	}
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to keep project file: %w", err)
	}
	return dst, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// StripMarker removes trailing force-directory markers and surrounding
// whitespace from an item, reporting whether a marker was present.
func StripMarker(item, marker string) (string, bool) {
	trimmed := strings.TrimRight(item, marker)
	return strings.TrimSpace(trimmed), len(trimmed) != len(item)
}
