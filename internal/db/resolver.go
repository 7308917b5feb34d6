package db

import (
	"fmt"
	"os"

	"github.com/vvka-141/pgimportdoc/internal/config"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U).
//
// Note: Password is NOT a CLI flag. Use one of these methods instead:
//  1. $PGPASSWORD environment variable
//  2. The interactive prompt (-W, or on server demand)
//  3. Connection string with embedded password
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were
// provided by the user.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags represents cloud IAM authentication CLI flags.
// Flags override the corresponding environment variables.
type CloudFlags struct {
	Azure          bool   // --azure: use the DefaultAzureCredential chain
	AzureTenantID  string // Overrides AZURE_TENANT_ID
	AzureClientID  string // Overrides AZURE_CLIENT_ID
	AWSRegion      string // Overrides AWS_REGION; enables AWS IAM auth
	GoogleInstance string // project:region:instance; enables Cloud SQL IAM auth
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string // PostgreSQL server host
	PGPORT       string // PostgreSQL server port
	PGUSER       string // PostgreSQL username
	PGPASSWORD   string // PostgreSQL password (discouraged, prefer the prompt)
	PGSSLMODE    string // SSL mode
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment
// variables, following standard PostgreSQL client behavior and Azure SDK
// conventions.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves connection parameters using
// PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) - if provided, parse and use directly
//  2. Granular flags (-h, -p, -U) - if any provided, build config from flags
//  3. Environment variables (PGHOST, PGPORT, ...) - fallback if no flags
//  4. DATABASE_URL environment variable - fallback if no granular params
//  5. pgimportdoc.yaml project defaults
//  6. Defaults (localhost:5432)
//
// The positional database name always wins over a database embedded in a
// connection string; this tool imports into exactly the database named on
// the command line.
//
// Returns an error if BOTH --connection and granular flags are provided.
func ResolveConnectionParams(
	database string,
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgimportdoc.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/postgres\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			pgimportdoc.ErrInvalidConfig,
		)
	}

	var connConfig *pgimportdoc.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		connConfig, err = ParseConnectionString(connStringFlag)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		connConfig, err = ParseConnectionString(envVars.DATABASE_URL)
	default:
		connConfig, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	// The positional database name overrides whatever the connection
	// string or config file carried.
	connConfig.Database = database

	// Fallback only: a user-supplied application_name from the connection
	// string stays in effect.
	if connConfig.AppName == "" {
		connConfig.AppName = pgimportdoc.AppName
	}

	if envVars.PGPASSWORD != "" && connConfig.Password == "" {
		connConfig.Password = envVars.PGPASSWORD
	}

	applyCloudAuth(connConfig, cloudFlags, envVars)

	return connConfig, nil
}

// resolveFromGranularParams builds a ConnectionConfig from flags with
// environment and project-config fallbacks.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	env *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgimportdoc.ConnectionConfig, error) {
	connConfig := &pgimportdoc.ConnectionConfig{
		Host:             pgimportdoc.DefaultHost,
		Port:             pgimportdoc.DefaultPort,
		AuthMethod:       pgimportdoc.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	if projectConfig != nil {
		if projectConfig.Connection.Host != "" {
			connConfig.Host = projectConfig.Connection.Host
		}
		if projectConfig.Connection.Port != 0 {
			connConfig.Port = projectConfig.Connection.Port
		}
		if projectConfig.Connection.Username != "" {
			connConfig.Username = projectConfig.Connection.Username
		}
		if projectConfig.Connection.SSLMode != "" {
			connConfig.SSLMode = projectConfig.Connection.SSLMode
		}
	}

	if env.PGHOST != "" {
		connConfig.Host = env.PGHOST
	}
	if env.PGPORT != "" {
		port, err := parsePort(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT: %w", err)
		}
		connConfig.Port = port
	}
	if env.PGUSER != "" {
		connConfig.Username = env.PGUSER
	}
	if env.PGSSLMODE != "" {
		connConfig.SSLMode = env.PGSSLMODE
	}

	if flags.Host != "" {
		connConfig.Host = flags.Host
	}
	if flags.Port != 0 {
		connConfig.Port = flags.Port
	}
	if flags.Username != "" {
		connConfig.Username = flags.Username
	}
	if flags.SSLMode != "" {
		connConfig.SSLMode = flags.SSLMode
	}

	return connConfig, nil
}

// applyCloudAuth switches the auth method when cloud flags or Azure
// environment variables are present. Flags take precedence over env vars.
func applyCloudAuth(connConfig *pgimportdoc.ConnectionConfig, flags *CloudFlags, env *EnvVars) {
	tenantID := flags.AzureTenantID
	if tenantID == "" {
		tenantID = env.AZURE_TENANT_ID
	}
	clientID := flags.AzureClientID
	if clientID == "" {
		clientID = env.AZURE_CLIENT_ID
	}

	switch {
	case flags.GoogleInstance != "":
		connConfig.AuthMethod = pgimportdoc.AuthMethodGoogleIAM
		connConfig.GoogleInstance = flags.GoogleInstance

	case flags.AWSRegion != "":
		connConfig.AuthMethod = pgimportdoc.AuthMethodAWSIAM
		connConfig.AWSRegion = flags.AWSRegion

	case flags.Azure || flags.AzureTenantID != "" || flags.AzureClientID != "":
		connConfig.AuthMethod = pgimportdoc.AuthMethodAzureEntraID
		connConfig.AzureTenantID = tenantID
		connConfig.AzureClientID = clientID
		connConfig.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("out of range: %d", port)
	}
	return port, nil
}
