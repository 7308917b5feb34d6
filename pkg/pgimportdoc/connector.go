package pgimportdoc

import "context"

// Connector is a unified interface for establishing database sessions.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, etc.).
type Connector interface {
	// Connect establishes a session with the target database.
	// The returned session must be closed by the caller when done.
	Connect(ctx context.Context) (Session, error)
}

// Session is a single open database session. All operations of one run
// (the optional encoding set plus the import command) execute on the same
// session, so session-scoped state like client_encoding applies to the
// import.
//
// Thread-Safety: NOT safe for concurrent use. The pipeline is strictly
// sequential and owns the session exclusively.
type Session interface {
	// SetClientEncoding issues SET client_encoding TO <encoding> and
	// returns the server's command tag.
	SetClientEncoding(ctx context.Context, encoding string) (string, error)

	// ExecDocument runs the command with the single bound parameter and
	// interprets the result. Server-side failures are returned as errors
	// wrapping ErrExecutionFailed.
	ExecDocument(ctx context.Context, command string, param BoundParameter) (ExecutionResult, error)

	// Close releases the session. Idempotent; must be called on every exit
	// path, success or failure.
	Close()
}

// PasswordPrompter asks the user for a password. The CLI provides a
// terminal implementation; tests provide fakes.
type PasswordPrompter interface {
	// PromptPassword displays the prompt and reads a password without echo.
	PromptPassword(prompt string) (string, error)
}
