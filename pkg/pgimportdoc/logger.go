package pgimportdoc

// Logger provides a pluggable logging interface for pgimportdoc operations.
//
// Output contract: Verbose and Info lines are progress diagnostics and go
// to standard output (scripting callers run without -v, so the single data
// line stays unambiguous); Warn and Error always go to standard error.
type Logger interface {
	// Verbose logs detailed progress information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Warn logs non-fatal warnings.
	Warn(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}
