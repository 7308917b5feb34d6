// Package testinfra starts throwaway PostgreSQL containers for integration
// tests. Tests calling into it must skip when Docker is unavailable.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vvka-141/pgimportdoc/internal/db"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

// ConnConfig parses the container's connection string into the resolved
// configuration the rest of the code consumes.
func (c *PostgresContainer) ConnConfig() (*pgimportdoc.ConnectionConfig, error) {
	cfg, err := db.ParseConnectionString(c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parse container connection string: %w", err)
	}
	cfg.Password = PostgresPassword
	return cfg, nil
}
