// Package config loads service configuration from a YAML file and the
// environment. Environment variables use the AUTHENTIC_ prefix with
// underscores for nesting (AUTHENTIC_AUTH_ALLOWED_EMAIL_DOMAIN); a local
// .env file is honored in development.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/authentic/internal/auth"
	"github.com/kbukum/authentic/internal/google"
	"github.com/kbukum/authentic/internal/keys"
	"github.com/kbukum/authentic/internal/logger"
	"github.com/kbukum/authentic/internal/observability"
	"github.com/kbukum/authentic/internal/ratelimit"
	"github.com/kbukum/authentic/internal/server"
	"github.com/kbukum/authentic/internal/storage"
)

const envPrefix = "AUTHENTIC"

// Config is the full service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`

	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Logging   logger.Config        `yaml:"logging" mapstructure:"logging"`
	Database  storage.Config       `yaml:"database" mapstructure:"database"`
	Auth      auth.Config          `yaml:"auth" mapstructure:"auth"`
	Keys      keys.Config          `yaml:"keys" mapstructure:"keys"`
	Google    google.Config        `yaml:"google" mapstructure:"google"`
	RateLimit ratelimit.Config     `yaml:"ratelimit" mapstructure:"ratelimit"`
	Tracing   observability.Config `yaml:"tracing" mapstructure:"tracing"`
}

// Load reads configuration from the optional YAML file at path (searched in
// the working directory when empty), applies environment overrides, then
// applies defaults and validates.
func Load(path string) (*Config, error) {
	// A .env file is a development convenience; absence is not an error.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			// Running on env vars alone is supported.
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	bindEnvKeys(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults applies defaults across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "authentic"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Server.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Keys.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate validates all sections.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config: server: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: logging: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("config: database: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("config: auth: %w", err)
	}
	if err := c.Google.Validate(); err != nil {
		return fmt.Errorf("config: google: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("config: ratelimit: %w", err)
	}
	return nil
}

// bindEnvKeys registers the nested keys so AutomaticEnv resolves them even
// without a config file present.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"name", "environment", "version",
		"server.host", "server.port",
		"logging.level", "logging.format", "logging.output",
		"database.dsn", "database.auto_migrate", "database.log_level",
		"auth.allowed_email_domain", "auth.access_token_ttl_minutes",
		"auth.refresh_token_ttl_days", "auth.algorithm",
		"keys.private_pem", "keys.public_pem", "keys.dir",
		"google.client_id", "google.client_secret", "google.redirect_uri",
		"ratelimit.login.max_requests", "ratelimit.login.window_seconds",
		"ratelimit.refresh.max_requests", "ratelimit.refresh.window_seconds",
		"ratelimit.client_auth.max_requests", "ratelimit.client_auth.window_seconds",
		"ratelimit.api.max_requests", "ratelimit.api.window_seconds",
		"tracing.enabled", "tracing.endpoint", "tracing.sample_rate",
	} {
		_ = v.BindEnv(key)
	}
}
