package pgimportdoc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format identifies the document format to import. It determines the
// database parameter type and the wire encoding of the single bound
// parameter.
type Format int

const (
	FormatText  Format = iota // untyped text, server infers the type
	FormatXML                 // xml, binary wire format
	FormatBytea               // bytea, binary wire format
)

// ParseFormat parses the -t flag keyword. Only XML, TEXT and BYTEA are
// accepted, matching the original tool's keywords exactly.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "XML":
		return FormatXML, nil
	case "TEXT":
		return FormatText, nil
	case "BYTEA":
		return FormatBytea, nil
	default:
		return FormatText, fmt.Errorf("only XML, TEXT or BYTEA types are supported, got %q: %w", s, ErrInvalidConfig)
	}
}

// String returns the CLI keyword for the format.
func (f Format) String() string {
	switch f {
	case FormatXML:
		return "XML"
	case FormatText:
		return "TEXT"
	case FormatBytea:
		return "BYTEA"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// IsValid returns true if the Format is a defined value.
func (f Format) IsValid() bool {
	return f >= FormatText && f <= FormatBytea
}

// PromptPolicy controls when the Connector may ask for a password.
type PromptPolicy int

const (
	// PromptDefault connects without a password first and prompts exactly
	// once if the server demands one.
	PromptDefault PromptPolicy = iota

	// PromptNever suppresses the prompt; an authentication failure is
	// terminal (-w).
	PromptNever

	// PromptAlways asks for the password before the first attempt (-W).
	PromptAlways
)

// String returns a human-readable name for the policy.
func (p PromptPolicy) String() string {
	switch p {
	case PromptDefault:
		return "default"
	case PromptNever:
		return "never"
	case PromptAlways:
		return "always"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ConnectionConfig represents resolved connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM authentication (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance in project:region:instance format
	// (used when AuthMethod is AuthMethodGoogleIAM)
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is
	// AuthMethodAzureEntraID). If all three are provided, Service Principal
	// authentication is used; otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// RunConfig is the immutable configuration for one import invocation.
// Created once from command-line input; never mutated during the pipeline.
type RunConfig struct {
	// Connection holds the resolved connection parameters, including the
	// target database name.
	Connection ConnectionConfig

	// PromptPolicy controls password prompting (-w / -W).
	PromptPolicy PromptPolicy

	// Format is the document format (-t), default TEXT.
	Format Format

	// Encoding is the optional client encoding override (-E).
	// Only meaningful together with FormatText.
	Encoding string

	// Command is the SQL command to execute (-c). It must reference exactly
	// one positional placeholder; the server rejects anything else at
	// execution time.
	Command string

	// InputPath names the document file (-f). Empty or "-" selects
	// standard input.
	InputPath string

	// Verbose enables progress messages on standard output.
	Verbose bool
}

// UseStdin reports whether the input source is standard input.
func (c *RunConfig) UseStdin() bool {
	return c.InputPath == "" || c.InputPath == "-"
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if c.Command == "" {
		errs = append(errs, fmt.Errorf("missing required argument: -c COMMAND: %w", ErrInvalidConfig))
	} else if !strings.Contains(c.Command, "$1") {
		errs = append(errs, fmt.Errorf("command must reference the document as $1: %w", ErrInvalidConfig))
	}

	if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("missing required argument: database name: %w", ErrInvalidConfig))
	}

	if !c.Format.IsValid() {
		errs = append(errs, fmt.Errorf("invalid document format %d: %w", int(c.Format), ErrInvalidConfig))
	}

	if c.Connection.Port < 1 || c.Connection.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port number: %d: %w", c.Connection.Port, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// CredentialCache holds a password obtained at most once per process.
// The Connector consults it before prompting, so repeated connection
// attempts within one run reuse the same credential.
//
// Thread-Safety: NOT safe for concurrent use; the pipeline is strictly
// sequential.
type CredentialCache struct {
	password string
	have     bool
}

// NewCredentialCache returns an empty cache. Seed it with Set (e.g. from
// $PGPASSWORD) before handing it to a Connector.
func NewCredentialCache() *CredentialCache {
	return &CredentialCache{}
}

// Set stores a password for the remainder of the run.
func (c *CredentialCache) Set(password string) {
	c.password = password
	c.have = true
}

// Get returns the cached password and whether one has been stored.
func (c *CredentialCache) Get() (string, bool) {
	return c.password, c.have
}

// BoundParameter is the single type-tagged parameter bound to the command.
// Exactly one instance is constructed per run.
type BoundParameter struct {
	// OID is the PostgreSQL type tag. Zero lets the server infer the type
	// from the command context (the TEXT format path).
	OID uint32

	// WireFormat is the parameter wire encoding: pgtype.TextFormatCode or
	// pgtype.BinaryFormatCode.
	WireFormat int16

	// Value is the raw document content.
	Value []byte
}

// ExecutionResult is the outcome of running the import command. It is
// consumed immediately for printing, then discarded.
type ExecutionResult struct {
	// Status is the server's command tag, e.g. "INSERT 0 1" or "SELECT 1".
	Status string

	// RowsReturned reports whether the command produced a result set
	// (as opposed to a command-only completion).
	RowsReturned bool

	// RowCount and ColumnCount describe the shape of the result set.
	RowCount    int
	ColumnCount int

	// Value is the first column of the first row, in text representation.
	// HasValue is false when the result set is empty or the value is null.
	Value    string
	HasValue bool
}
