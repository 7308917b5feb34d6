package pgimportdoc

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := importer.Run(ctx, config)
//	if errors.Is(err, pgimportdoc.ErrInputTooLarge) {
//	    // Handle oversized input
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPasswordRequired indicates the server demanded a password while
	// prompting was suppressed, or the retry budget was exhausted.
	ErrPasswordRequired = errors.New("password required")

	// ErrInputTooLarge indicates a regular-file input exceeds MaxDocumentSize.
	ErrInputTooLarge = errors.New("input too large")

	// ErrOutOfMemory indicates the document buffer could not be grown.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrInputFailed indicates the input source could not be opened or read.
	ErrInputFailed = errors.New("input failed")

	// ErrExecutionFailed indicates the server rejected the encoding-set
	// command or the import command itself.
	ErrExecutionFailed = errors.New("execution failed")
)

// ExitCodeForError returns the exit code for an error: ExitSuccess for nil,
// ExitUsageError for command-line parsing failures, ExitFailure for every
// other terminal error.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if isUsageError(err) {
		return ExitUsageError
	}
	return ExitFailure
}

// isUsageError matches the flag/argument parsing failures cobra reports
// before the run starts.
func isUsageError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unknown flag") ||
		strings.Contains(msg, "unknown shorthand flag") ||
		strings.Contains(msg, "unknown command") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "accepts 1 arg(s)") ||
		strings.Contains(msg, "required flag")
}

// IsTerminalConnectionError reports whether the error is a connection-class
// failure, either via the sentinels or via common transport error patterns.
func IsTerminalConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrPasswordRequired) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host")
}
