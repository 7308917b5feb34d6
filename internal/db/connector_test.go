package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// fakePrompter counts prompts and serves a canned password or error.
type fakePrompter struct {
	password string
	err      error
	calls    int
}

func (p *fakePrompter) PromptPassword(prompt string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.password, nil
}

func standardConfig() *pgimportdoc.ConnectionConfig {
	return &pgimportdoc.ConnectionConfig{
		Host:       "localhost",
		Port:       5432,
		Database:   "mydb",
		Username:   "alice",
		AuthMethod: pgimportdoc.AuthMethodStandard,
	}
}

func TestNeedsPassword(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "invalid_password sqlstate", err: &pgconn.PgError{Code: "28P01"}, want: true},
		{name: "invalid_authorization sqlstate", err: &pgconn.PgError{Code: "28000"}, want: true},
		{name: "wrapped pg error", err: fmt.Errorf("connect: %w", &pgconn.PgError{Code: "28P01"}), want: true},
		{name: "other sqlstate", err: &pgconn.PgError{Code: "3D000"}, want: false},
		{name: "password message pattern", err: errors.New("FATAL: password authentication failed for user"), want: true},
		{name: "no password supplied pattern", err: errors.New("fe_sendauth: no password supplied"), want: true},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsPassword(tt.err); got != tt.want {
				t.Errorf("needsPassword(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestShouldRetryWithPassword(t *testing.T) {
	authErr := &pgconn.PgError{Code: "28P01"}

	tests := []struct {
		name     string
		policy   pgimportdoc.PromptPolicy
		cached   bool
		password string
		err      error
		want     bool
	}{
		{
			name:   "fresh auth challenge retries",
			policy: pgimportdoc.PromptDefault,
			err:    authErr,
			want:   true,
		},
		{
			name:   "prompting disabled never retries",
			policy: pgimportdoc.PromptNever,
			err:    authErr,
			want:   false,
		},
		{
			name:   "cached password already spent the retry",
			policy: pgimportdoc.PromptDefault,
			cached: true,
			err:    authErr,
			want:   false,
		},
		{
			name:     "environment password is a real rejection",
			policy:   pgimportdoc.PromptDefault,
			password: "from-pgpassword",
			err:      authErr,
			want:     false,
		},
		{
			name:   "non-auth failure never retries",
			policy: pgimportdoc.PromptDefault,
			err:    errors.New("connection refused"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := standardConfig()
			cfg.Password = tt.password

			cache := pgimportdoc.NewCredentialCache()
			if tt.cached {
				cache.Set("cached")
			}

			c := NewStandardConnector(cfg, Options{
				PromptPolicy: tt.policy,
				Credentials:  cache,
			})

			if got := c.shouldRetryWithPassword(tt.err); got != tt.want {
				t.Errorf("shouldRetryWithPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromptPassword_CachesResult(t *testing.T) {
	prompter := &fakePrompter{password: "typed"}
	cache := pgimportdoc.NewCredentialCache()

	c := NewStandardConnector(standardConfig(), Options{
		Prompter:    prompter,
		Credentials: cache,
	})

	if err := c.promptPassword(); err != nil {
		t.Fatalf("promptPassword() unexpected error: %v", err)
	}
	if prompter.calls != 1 {
		t.Errorf("prompt calls = %d, want 1", prompter.calls)
	}
	pw, ok := cache.Get()
	if !ok || pw != "typed" {
		t.Errorf("cache = (%q, %v), want (typed, true)", pw, ok)
	}
}

func TestPromptPassword_NoPrompter(t *testing.T) {
	c := NewStandardConnector(standardConfig(), Options{})

	err := c.promptPassword()
	if !errors.Is(err, pgimportdoc.ErrPasswordRequired) {
		t.Fatalf("promptPassword() error = %v, want ErrPasswordRequired", err)
	}
}

func TestPromptPassword_PrompterFailure(t *testing.T) {
	prompter := &fakePrompter{err: errors.New("tty gone")}

	c := NewStandardConnector(standardConfig(), Options{Prompter: prompter})

	err := c.promptPassword()
	if !errors.Is(err, pgimportdoc.ErrPasswordRequired) {
		t.Fatalf("promptPassword() error = %v, want ErrPasswordRequired", err)
	}
}

func TestNewConnector_FactorySelection(t *testing.T) {
	t.Run("standard auth", func(t *testing.T) {
		c, err := NewConnector(standardConfig(), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := c.(*StandardConnector); !ok {
			t.Errorf("connector type = %T, want *StandardConnector", c)
		}
	})

	t.Run("google auth requires instance", func(t *testing.T) {
		cfg := standardConfig()
		cfg.AuthMethod = pgimportdoc.AuthMethodGoogleIAM
		if _, err := NewConnector(cfg, Options{}); err == nil {
			t.Error("expected error without an instance connection name")
		}
	})

	t.Run("google auth requires username", func(t *testing.T) {
		cfg := standardConfig()
		cfg.AuthMethod = pgimportdoc.AuthMethodGoogleIAM
		cfg.GoogleInstance = "proj:region:inst"
		cfg.Username = ""
		if _, err := NewConnector(cfg, Options{}); err == nil {
			t.Error("expected error without a username")
		}
	})
}

func TestWrapConnectionError(t *testing.T) {
	cfg := standardConfig()

	tests := []struct {
		name string
		err  error
	}{
		{name: "refused", err: errors.New("dial tcp 127.0.0.1:5432: connection refused")},
		{name: "unknown host", err: errors.New("lookup badhost: no such host")},
		{name: "auth failure", err: &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}},
		{name: "missing database", err: errors.New(`database "mydb" does not exist`)},
		{name: "tls failure", err: errors.New("tls handshake failure")},
		{name: "anything else", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapConnectionError(tt.err, cfg)
			if !errors.Is(wrapped, pgimportdoc.ErrConnectionFailed) {
				t.Errorf("wrapConnectionError(%v) does not wrap ErrConnectionFailed: %v", tt.err, wrapped)
			}
		})
	}
}
