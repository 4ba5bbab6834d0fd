// Package config loads server settings from AZDO_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server needs to reach an Azure DevOps
// instance: where it lives, how to authenticate, and local behavior knobs.
type Config struct {
	// ServerURL is the base URL of the Azure DevOps instance, for example
	// https://dev.azure.com or https://tfs.example.com/tfs for on-prem.
	ServerURL string `envconfig:"SERVER_URL"`

	// Collection is the organization or project collection name appended
	// to ServerURL.
	Collection string `envconfig:"COLLECTION"`

	// PAT is the personal access token used for basic auth.
	PAT string `envconfig:"PAT"`

	// Project is the default project applied when a call omits one.
	Project string `envconfig:"PROJECT"`

	// DataDir holds the invocation database, logs, and saved queries.
	DataDir string `envconfig:"DATA_DIR"`

	// RequestTimeout bounds each upstream API call.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// History toggles invocation recording to the local database.
	History bool `envconfig:"HISTORY" default:"true"`
}

// Load reads configuration from the environment under the AZDO_ prefix.
// Only syntactic problems fail here; missing credentials are diagnosed
// later by Validate so read-only commands like tool listing still work.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("azdo", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".azdo-cli")
	}
	return &cfg, nil
}

// Validate reports whether the configuration is complete enough to talk
// to an Azure DevOps instance.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("AZDO_SERVER_URL is not set")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("AZDO_SERVER_URL must start with http:// or https://, got %q", c.ServerURL)
	}
	if c.Collection == "" {
		return fmt.Errorf("AZDO_COLLECTION is not set")
	}
	if c.PAT == "" {
		return fmt.Errorf("AZDO_PAT is not set")
	}
	return nil
}

// OrganizationURL joins the server URL and collection into the base URL
// the API clients connect to.
func (c *Config) OrganizationURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/" + strings.Trim(c.Collection, "/")
}

// DatabasePath returns the invocation history database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// LogPath returns the JSONL log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "azdo-cli.jsonl")
}

// QueriesPath returns the saved-queries file location.
func (c *Config) QueriesPath() string {
	return filepath.Join(c.DataDir, "queries.yaml")
}

// EnsureDataDir creates the data directory if it does not exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o755)
}
