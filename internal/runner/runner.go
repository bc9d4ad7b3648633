// =============================================================================
// Easy Enigma Virtual Box Builder - Packager Runner
// =============================================================================
//
// This module invokes the Enigma Virtual Box console packager with a project
// file as its only argument. Only the exit status is interpreted: zero is
// success, anything else is an ExternalToolError. Nothing is retried.
//
// EXECUTABLE LOOKUP (first match wins):
//   1. The explicit path (--evb flag)
//   2. The EEVB_EXECUTABLE environment variable
//   3. data/enigmavbconsole.exe next to the running binary
//   4. enigmavbconsole.exe on PATH
//
// =============================================================================

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	eevberrors "github.com/eevb-tools/eevb/internal/errors"
)

// ExecutableName is the packager's file name.
const ExecutableName = "enigmavbconsole.exe"

// EnvExecutable overrides the packager location.
const EnvExecutable = "EEVB_EXECUTABLE"

// Runner runs the packager.
type Runner struct {
	// Executable is the packager path.
	Executable string

	// Stdout and Stderr receive the packager's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Runner for the packager found by LocateExecutable.
func New(explicit string) (*Runner, error) {
	exe, err := LocateExecutable(explicit)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Executable: exe,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}, nil
}

// LocateExecutable finds the packager.
func LocateExecutable(explicit string) (string, error) {
	if explicit != "" {
		return checkExecutable(explicit)
	}
	if env := os.Getenv(EnvExecutable); env != "" {
		return checkExecutable(env)
	}

	if self, err := os.Executable(); err == nil {
		bundled := filepath.Join(filepath.Dir(self), "data", ExecutableName)
		if info, err := os.Stat(bundled); err == nil && !info.IsDir() {
			return bundled, nil
		}
	}

	if found, err := exec.LookPath(ExecutableName); err == nil {
		return found, nil
	}

	return "", eevberrors.NewExternalToolError(
		fmt.Sprintf("missing required executable %s (use --evb or %s)", ExecutableName, EnvExecutable), -1, nil)
}

func checkExecutable(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", eevberrors.NewExternalToolError(fmt.Sprintf("packager not found at %s", path), -1, err)
	}
	if info.IsDir() {
		return "", eevberrors.NewExternalToolError(fmt.Sprintf("packager path %s is a directory", path), -1, nil)
	}
	return path, nil
}

// Run invokes the packager on projectPath and waits for it to exit.
//
// RETURNS:
//   - nil if the packager exited with status zero.
//   - An ExternalToolError carrying the exit status otherwise.
func (r *Runner) Run(ctx context.Context, projectPath string) error {
	cmd := exec.CommandContext(ctx, r.Executable, projectPath)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return eevberrors.NewExternalToolError("packager interrupted", -1, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return eevberrors.NewExternalToolError(fmt.Sprintf("packager exited with status %d", code), code, err)
	}
	return eevberrors.NewExternalToolError("failed to start packager", -1, err)
}
