package pgimportdoc

// Exit codes. The tool performs one unit of work per invocation, so every
// terminal error exits 1; finer classification lives in the sentinel errors,
// not the exit status.
const (
	ExitSuccess    = 0 // Import completed successfully
	ExitFailure    = 1 // Any terminal error
	ExitUsageError = 2 // CLI usage error (unknown flag, wrong arg count)
	ExitPanic      = 3 // Internal panic (unexpected crash)
)

const (
	// MaxDocumentSize is the hard cap on regular-file input, enforced
	// before reading. Guards the full-buffering design against unbounded
	// memory growth.
	MaxDocumentSize = 1 << 30 // 1 GiB

	// ReadChunkSize is the read granularity of the input loader.
	ReadChunkSize = 1024

	// AppName is sent as the fallback application name on every connection.
	AppName = "pgimportdoc"

	// DefaultHost and DefaultPort apply when neither flags nor PG*
	// environment variables specify a server address.
	DefaultHost = "localhost"
	DefaultPort = 5432
)
