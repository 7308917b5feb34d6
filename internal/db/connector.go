package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgimportdoc/internal/logging"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// Pool sizing for a single-shot import: one working connection, one spare.
const (
	defaultMaxConns = 2
	defaultMinConns = 1
)

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = defaultMaxConns
	poolConfig.MinConns = defaultMinConns
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		fmt.Fprintln(os.Stderr, notice.Message)
	}
}

// connectPool opens and pings a pool for the given config.
func connectPool(ctx context.Context, connConfig *pgimportdoc.ConnectionConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(connConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	configurePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Options carries the cross-cutting dependencies a connector needs beyond
// the connection parameters themselves.
type Options struct {
	// PromptPolicy controls password prompting (standard auth only).
	PromptPolicy pgimportdoc.PromptPolicy

	// Prompter asks the user for a password. Required unless the policy
	// is PromptNever or a password is already cached.
	Prompter pgimportdoc.PasswordPrompter

	// Credentials is the per-run credential cache. A password obtained
	// during this run is stored there and reused on later attempts.
	Credentials *pgimportdoc.CredentialCache

	// Format is echoed in the verbose connection confirmation.
	Format pgimportdoc.Format

	// Logger receives verbose diagnostics. Defaults to a no-op logger.
	Logger pgimportdoc.Logger
}

func (o *Options) normalize() {
	if o.Credentials == nil {
		o.Credentials = pgimportdoc.NewCredentialCache()
	}
	if o.Logger == nil {
		o.Logger = logging.NewNullLogger()
	}
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(connConfig *pgimportdoc.ConnectionConfig, opts Options) (pgimportdoc.Connector, error) {
	opts.normalize()

	switch connConfig.AuthMethod {
	case pgimportdoc.AuthMethodStandard:
		return NewStandardConnector(connConfig, opts), nil
	case pgimportdoc.AuthMethodAWSIAM:
		return newAWSConnector(connConfig, opts)
	case pgimportdoc.AuthMethodGoogleIAM:
		return newGoogleConnector(connConfig, opts)
	case pgimportdoc.AuthMethodAzureEntraID:
		return newAzureConnector(connConfig, opts)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", connConfig.AuthMethod, pgimportdoc.ErrInvalidConfig)
	}
}

// StandardConnector implements password authentication with the classic
// client behavior: try once, and if the server demands a password that was
// not supplied yet, prompt exactly once and retry. A second authentication
// failure is terminal. No other failure is ever retried.
type StandardConnector struct {
	config *pgimportdoc.ConnectionConfig
	opts   Options
}

// NewStandardConnector creates a StandardConnector with the given
// configuration and options.
func NewStandardConnector(connConfig *pgimportdoc.ConnectionConfig, opts Options) *StandardConnector {
	opts.normalize()
	return &StandardConnector{config: connConfig, opts: opts}
}

// Connect establishes the session, handling the single password retry.
func (c *StandardConnector) Connect(ctx context.Context) (pgimportdoc.Session, error) {
	if c.opts.PromptPolicy == pgimportdoc.PromptAlways {
		if _, ok := c.opts.Credentials.Get(); !ok {
			if err := c.promptPassword(); err != nil {
				return nil, err
			}
		}
	}

	pool, err := c.attempt(ctx)
	if err != nil && c.shouldRetryWithPassword(err) {
		if perr := c.promptPassword(); perr != nil {
			return nil, perr
		}
		pool, err = c.attempt(ctx)
	}

	if err != nil {
		if needsPassword(err) && c.opts.PromptPolicy == pgimportdoc.PromptNever {
			return nil, fmt.Errorf("server requires a password and prompting is disabled (-w): %w",
				pgimportdoc.ErrPasswordRequired)
		}
		return nil, wrapConnectionError(err, c.config)
	}

	c.opts.Logger.Verbose("Connected to database %q", c.config.Database)
	c.opts.Logger.Verbose("Import %s document", c.opts.Format)

	return NewSession(ctx, pool)
}

// attempt makes a single connection attempt using the cached credential
// if one exists.
func (c *StandardConnector) attempt(ctx context.Context) (*pgxpool.Pool, error) {
	connConfig := *c.config
	if password, ok := c.opts.Credentials.Get(); ok {
		connConfig.Password = password
	}
	return connectPool(ctx, &connConfig)
}

// shouldRetryWithPassword reports whether the failure is the server asking
// for a password we have not supplied yet and policy allows asking.
func (c *StandardConnector) shouldRetryWithPassword(err error) bool {
	if c.opts.PromptPolicy == pgimportdoc.PromptNever {
		return false
	}
	// A password supplied via $PGPASSWORD or a connection string counts as
	// already provided; a rejection then is a real auth failure, not a
	// challenge.
	if _, ok := c.opts.Credentials.Get(); ok {
		return false
	}
	if c.config.Password != "" {
		return false
	}
	return needsPassword(err)
}

func (c *StandardConnector) promptPassword() error {
	if c.opts.Prompter == nil {
		return fmt.Errorf("no password prompter available: %w", pgimportdoc.ErrPasswordRequired)
	}
	password, err := c.opts.Prompter.PromptPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %v: %w", err, pgimportdoc.ErrPasswordRequired)
	}
	c.opts.Credentials.Set(password)
	return nil
}

// needsPassword classifies a connection failure as a password challenge.
// SQLSTATE class 28 covers invalid_authorization_specification (28000) and
// invalid_password (28P01); message patterns catch transports that drop the
// structured error.
func needsPassword(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "28")
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password authentication failed") ||
		strings.Contains(msg, "no password supplied") ||
		strings.Contains(msg, "password is required")
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, connConfig *pgimportdoc.ConnectionConfig) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", connConfig.Host, connConfig.Port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %v: %w`, addr, connConfig.Host, connConfig.Port, err, pgimportdoc.ErrConnectionFailed)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host %q

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %v: %w`, connConfig.Host, err, pgimportdoc.ErrConnectionFailed)

	case needsPassword(err):
		return fmt.Errorf(`authentication failed for database %q

Possible causes:
  - Wrong password (check $PGPASSWORD)
  - Wrong username (-U)
  - User does not have access to the database

Original error: %v: %w`, connConfig.Database, err, pgimportdoc.ErrConnectionFailed)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database %q does not exist

Original error: %v: %w`, connConfig.Database, err, pgimportdoc.ErrConnectionFailed)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %v: %w`, err, pgimportdoc.ErrConnectionFailed)

	default:
		return fmt.Errorf("connection to database %q failed: %v: %w",
			connConfig.Database, err, pgimportdoc.ErrConnectionFailed)
	}
}
