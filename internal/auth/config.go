package auth

import (
	"fmt"
	"time"
)

// Config holds the token and policy settings of the orchestrator.
type Config struct {
	// AllowedEmailDomain is the suffix user emails must carry to log in.
	AllowedEmailDomain string `yaml:"allowed_email_domain" mapstructure:"allowed_email_domain"`

	// AccessTokenTTLMinutes is the access token lifetime in minutes.
	AccessTokenTTLMinutes int `yaml:"access_token_ttl_minutes" mapstructure:"access_token_ttl_minutes"`

	// RefreshTokenTTLDays is the refresh token lifetime in days.
	RefreshTokenTTLDays int `yaml:"refresh_token_ttl_days" mapstructure:"refresh_token_ttl_days"`

	// Algorithm is the JWT signing algorithm identifier. Only RS256 is
	// supported; the field exists so a misconfiguration fails loudly.
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.AccessTokenTTLMinutes == 0 {
		c.AccessTokenTTLMinutes = 15
	}
	if c.RefreshTokenTTLDays == 0 {
		c.RefreshTokenTTLDays = 7
	}
	if c.Algorithm == "" {
		c.Algorithm = "RS256"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.AllowedEmailDomain == "" {
		return fmt.Errorf("auth.allowed_email_domain is required")
	}
	if c.Algorithm != "RS256" {
		return fmt.Errorf("auth.algorithm must be RS256 (got: %s)", c.Algorithm)
	}
	if c.AccessTokenTTLMinutes < 1 {
		return fmt.Errorf("auth.access_token_ttl_minutes must be >= 1 (got: %d)", c.AccessTokenTTLMinutes)
	}
	if c.RefreshTokenTTLDays < 1 {
		return fmt.Errorf("auth.refresh_token_ttl_days must be >= 1 (got: %d)", c.RefreshTokenTTLDays)
	}
	return nil
}

// AccessTokenTTL returns the access token lifetime as a duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime as a duration.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}
