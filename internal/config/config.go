// Package config loads optional project defaults from pgimportdoc.yaml.
//
// The file supplies connection defaults for repeated imports into the same
// server; flags and PG* environment variables always take precedence, and
// the password is never read from it.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	SSLMode  string `yaml:"sslmode"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`

	// Format is the default document format (XML, TEXT or BYTEA) when -t
	// is not given.
	Format string `yaml:"format,omitempty"`

	// Encoding is the default client encoding when -E is not given.
	Encoding string `yaml:"encoding,omitempty"`
}

const ConfigFileName = "pgimportdoc.yaml"

// Load reads pgimportdoc.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
