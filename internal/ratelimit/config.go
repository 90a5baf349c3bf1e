package ratelimit

import (
	"fmt"
	"time"
)

// Endpoint class names used as the second half of a limiter key.
const (
	EndpointLogin      = "login"
	EndpointRefresh    = "token_refresh"
	EndpointClientAuth = "client_auth"
	EndpointAPI        = "api"
)

// Rule is one endpoint class's limit.
type Rule struct {
	MaxRequests   int `yaml:"max_requests" mapstructure:"max_requests"`
	WindowSeconds int `yaml:"window_seconds" mapstructure:"window_seconds"`
}

// Window returns the rule's window as a duration.
func (r Rule) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// Config holds the per-endpoint-class limits.
type Config struct {
	Login      Rule `yaml:"login" mapstructure:"login"`
	Refresh    Rule `yaml:"refresh" mapstructure:"refresh"`
	ClientAuth Rule `yaml:"client_auth" mapstructure:"client_auth"`
	API        Rule `yaml:"api" mapstructure:"api"`
}

// ApplyDefaults sets the stock limits for unset rules.
func (c *Config) ApplyDefaults() {
	if c.Login.MaxRequests == 0 {
		c.Login = Rule{MaxRequests: 5, WindowSeconds: 60}
	}
	if c.Refresh.MaxRequests == 0 {
		c.Refresh = Rule{MaxRequests: 10, WindowSeconds: 60}
	}
	if c.ClientAuth.MaxRequests == 0 {
		c.ClientAuth = Rule{MaxRequests: 20, WindowSeconds: 60}
	}
	if c.API.MaxRequests == 0 {
		c.API = Rule{MaxRequests: 100, WindowSeconds: 60}
	}
}

// Validate checks the configured rules.
func (c *Config) Validate() error {
	for name, r := range map[string]Rule{
		"login": c.Login, "refresh": c.Refresh,
		"client_auth": c.ClientAuth, "api": c.API,
	} {
		if r.MaxRequests < 1 {
			return fmt.Errorf("ratelimit.%s.max_requests must be >= 1 (got: %d)", name, r.MaxRequests)
		}
		if r.WindowSeconds < 1 {
			return fmt.Errorf("ratelimit.%s.window_seconds must be >= 1 (got: %d)", name, r.WindowSeconds)
		}
	}
	return nil
}
