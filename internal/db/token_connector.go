package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is acquired once per run and used as the PostgreSQL password;
// an authentication failure with a fresh token is terminal.
type TokenBasedConnector struct {
	config        *pgimportdoc.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	opts          Options
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for
// authentication. providerName is used in messages (e.g. "AWS IAM", "Azure").
func NewTokenBasedConnector(connConfig *pgimportdoc.ConnectionConfig, tokenProvider TokenProvider, providerName string, opts Options) *TokenBasedConnector {
	opts.normalize()
	return &TokenBasedConnector{
		config:        connConfig,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		opts:          opts,
	}
}

// Connect acquires a token and establishes the session.
func (c *TokenBasedConnector) Connect(ctx context.Context) (pgimportdoc.Session, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %v: %w", c.providerName, err, pgimportdoc.ErrConnectionFailed)
	}

	if remaining := time.Until(expiresOn); remaining < 5*time.Minute {
		c.opts.Logger.Warn("%s token expires in %v", c.providerName, remaining.Round(time.Second))
	}

	c.opts.Logger.Verbose("Authenticating via %s", c.tokenProvider)

	connConfig := *c.config
	connConfig.Password = token

	pool, err := connectPool(ctx, &connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, c.config)
	}

	c.opts.Logger.Verbose("Connected to database %q", c.config.Database)
	c.opts.Logger.Verbose("Import %s document", c.opts.Format)

	return NewSession(ctx, pool)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(connConfig *pgimportdoc.ConnectionConfig, opts Options) (pgimportdoc.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", connConfig.Host, connConfig.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, connConfig.AWSRegion, connConfig.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(connConfig, tokenProvider, "AWS IAM", opts), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID
// token provider. Explicit credentials (tenant, client, secret) select
// Service Principal auth; otherwise the DefaultAzureCredential chain is used.
func newAzureConnector(connConfig *pgimportdoc.ConnectionConfig, opts Options) (pgimportdoc.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if connConfig.AzureTenantID != "" && connConfig.AzureClientID != "" && connConfig.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			connConfig.AzureTenantID,
			connConfig.AzureClientID,
			connConfig.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(connConfig, tokenProvider, "Azure", opts), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL
// IAM authentication.
func newGoogleConnector(connConfig *pgimportdoc.ConnectionConfig, opts Options) (pgimportdoc.Connector, error) {
	if connConfig.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pgimportdoc.ErrInvalidConfig)
	}
	if connConfig.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", pgimportdoc.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(connConfig, connConfig.GoogleInstance, opts), nil
}
