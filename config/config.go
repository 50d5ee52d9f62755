// ABOUTME: Environment-driven configuration for the fiveyard server
// ABOUTME: Loads .env, parses env vars, resolves the default database path
package config

import (
	"fmt"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is everything the process reads from the environment. A
// non-empty DatabaseURL selects Postgres; otherwise SQLite at DBPath.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBPath      string `env:"FIVEYARD_DB_PATH"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	SFLoginURL       string   `env:"SF_LOGIN_URL" envDefault:"https://login.salesforce.com"`
	SFClientID       string   `env:"SF_CLIENT_ID"`
	SFClientSecret   string   `env:"SF_CLIENT_SECRET"`
	SFUsername       string   `env:"SF_USERNAME"`
	SFPassword       string   `env:"SF_PASSWORD"`
	SFSecurityToken  string   `env:"SF_SECURITY_TOKEN"`
	SFAPIVersion     string   `env:"SF_API_VERSION" envDefault:"59.0"`
	SFExcludedOwners []string `env:"SF_EXCLUDED_OWNERS" envSeparator:"," envDefault:"roxy"`
}

// Load reads configuration from a .env file (when present) and the
// process environment. The .env file never overrides real env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DatabaseURL == "" && cfg.DBPath == "" {
		path, err := xdg.DataFile("fiveyard/fiveyard.db")
		if err != nil {
			return nil, fmt.Errorf("resolve data directory: %w", err)
		}
		cfg.DBPath = path
	}
	return cfg, nil
}

// HasSalesforceCredentials reports whether enough of the remote-source
// config is present to attempt a sync.
func (c *Config) HasSalesforceCredentials() bool {
	return c.SFClientID != "" && c.SFClientSecret != "" && c.SFUsername != "" && c.SFPassword != ""
}
