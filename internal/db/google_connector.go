package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// GoogleCloudSQLConnector implements the Connector interface for Google
// Cloud SQL using IAM database authentication via the Cloud SQL Go
// Connector, which handles authentication, TLS, and dialing.
type GoogleCloudSQLConnector struct {
	config   *pgimportdoc.ConnectionConfig
	instance string
	opts     Options
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM
// authentication. instance is the instance connection name in
// project:region:instance format.
func NewGoogleCloudSQLConnector(connConfig *pgimportdoc.ConnectionConfig, instance string, opts Options) *GoogleCloudSQLConnector {
	opts.normalize()
	return &GoogleCloudSQLConnector{
		config:   connConfig,
		instance: instance,
		opts:     opts,
	}
}

// Connect establishes the session through the Cloud SQL dialer. The dialer
// lives as long as the session; closing the session's pool closes its
// connections, and the dialer is released with the process.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (pgimportdoc.Session, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %v: %w", err, pgimportdoc.ErrConnectionFailed)
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s dbname=%s sslmode=disable",
		c.instance,
		c.config.Username,
		c.config.Database,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, pgimportdoc.ErrConnectionFailed)
	}

	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}

	configurePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		dialer.Close()
		return nil, wrapConnectionError(err, c.config)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		dialer.Close()
		return nil, wrapConnectionError(err, c.config)
	}

	c.opts.Logger.Verbose("Connected to database %q via Cloud SQL instance %s", c.config.Database, c.instance)
	c.opts.Logger.Verbose("Import %s document", c.opts.Format)

	return NewSession(ctx, pool)
}
