// =============================================================================
// Easy Enigma Virtual Box Builder - Error Taxonomy
// =============================================================================
//
// This package defines the error kinds reported by a build. Every failure is
// terminal for the build that produced it; nothing is retried.
//
// KINDS:
//   - SchemaError        : malformed, missing, or unknown configuration fields
//   - ConfigNotFound     : the configuration file does not exist
//   - BuildError         : compiling the configuration to XML failed
//   - SerializationError : writing the XML document failed
//   - ExternalToolError  : the packager exited with a non-zero status
//
// Missing item paths are never an error: they are skipped during the build.
//
// =============================================================================

package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	KindSchema Kind = iota + 1
	KindConfigNotFound
	KindBuild
	KindSerialization
	KindExternalTool
)

var kindNames = map[Kind]string{
	KindSchema:         "schema error",
	KindConfigNotFound: "config not found",
	KindBuild:          "build error",
	KindSerialization:  "serialization error",
	KindExternalTool:   "external tool error",
}

// String returns the human readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is matching against a kind.
var (
	ErrSchema         = &Error{Kind: KindSchema}
	ErrConfigNotFound = &Error{Kind: KindConfigNotFound}
	ErrBuild          = &Error{Kind: KindBuild}
	ErrSerialization  = &Error{Kind: KindSerialization}
	ErrExternalTool   = &Error{Kind: KindExternalTool}
)

// Error is the base error type for all build failures.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// ExitCode is the packager's exit status for KindExternalTool errors.
	ExitCode int
}

// Error returns the error message, including the cause if present.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewSchemaError creates a new configuration schema error.
func NewSchemaError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}

// NewSchemaErrorWithCause creates a schema error with an underlying cause.
func NewSchemaErrorWithCause(msg string, cause error) *Error {
	return &Error{Kind: KindSchema, Message: msg, Cause: cause}
}

// NewConfigNotFound reports a missing configuration file.
func NewConfigNotFound(path string) *Error {
	return &Error{Kind: KindConfigNotFound, Message: fmt.Sprintf("configuration file not found: %s", path)}
}

// NewBuildError wraps a failure that happened while compiling the project.
func NewBuildError(msg string, cause error) *Error {
	return &Error{Kind: KindBuild, Message: msg, Cause: cause}
}

// NewSerializationError wraps a failure while producing the XML text.
func NewSerializationError(msg string, cause error) *Error {
	return &Error{Kind: KindSerialization, Message: msg, Cause: cause}
}

// NewExternalToolError reports a packager run that did not succeed.
func NewExternalToolError(msg string, exitCode int, cause error) *Error {
	return &Error{Kind: KindExternalTool, Message: msg, Cause: cause, ExitCode: exitCode}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
