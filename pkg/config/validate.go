package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	if c.Upstream.BaseURL == "" {
		errs = append(errs, fmt.Errorf("upstream.base_url is required"))
	} else if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream.base_url must be an absolute URL, got %q", c.Upstream.BaseURL))
	}

	if c.Upstream.Timeout < 0 {
		errs = append(errs, fmt.Errorf("upstream.timeout must be >= 0, got %v", c.Upstream.Timeout))
	}

	switch c.Auth.Type {
	case "none", "apikey", "jwt":
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"apikey\", or \"jwt\", got %q", c.Auth.Type))
	}

	if c.Auth.Type == "jwt" && c.Auth.JWT.JWKSURL == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.jwks_url is required when auth.type is \"jwt\""))
	}

	if c.Auth.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("auth.rate_limit.requests_per_minute must be >= 0, got %d",
			c.Auth.RateLimit.RequestsPerMinute))
	}

	if c.Engine.MaxMessages < 0 {
		errs = append(errs, fmt.Errorf("engine.max_messages must be >= 0, got %d", c.Engine.MaxMessages))
	}
	if c.Engine.MaxTools < 0 {
		errs = append(errs, fmt.Errorf("engine.max_tools must be >= 0, got %d", c.Engine.MaxTools))
	}

	return errors.Join(errs...)
}
