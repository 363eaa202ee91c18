// Package config provides unified configuration for the bote gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (BOTE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// The upstream API key is special: it is resolved per exchange through
// Credentials so key changes take effect without a restart.
package config

import "time"

// Config holds all configuration for the bote gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream"`
	Engine        EngineConfig        `yaml:"engine"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
	Debug         DebugConfig         `yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 300s, must cover the longest stream
}

// UpstreamConfig holds settings for the upstream chat completions API.
type UpstreamConfig struct {
	BaseURL    string        `yaml:"base_url"`     // default: https://api.v0.dev/v1
	APIKey     string        `yaml:"api_key"`      // optional; V0_API_KEY env wins
	APIKeyFile string        `yaml:"api_key_file"` // _file variant, re-read on change
	Timeout    time.Duration `yaml:"timeout"`      // default: 120s
}

// EngineConfig holds exchange orchestration settings.
type EngineConfig struct {
	DefaultModel string `yaml:"default_model"` // optional
	MaxMessages  int    `yaml:"max_messages"`  // default: 1000
	MaxTools     int    `yaml:"max_tools"`     // default: 128
}

// AuthConfig holds authentication settings for the gateway's own API.
type AuthConfig struct {
	Type      string          `yaml:"type"`     // "none", "apikey", "jwt", default: "none"
	APIKeys   []APIKeyConfig  `yaml:"api_keys"` // key entries for type=apikey
	JWT       JWTConfig       `yaml:"jwt"`      // settings for type=jwt
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key         string `yaml:"key"`
	KeyFile     string `yaml:"key_file"` // _file variant for key
	Subject     string `yaml:"subject"`
	ServiceTier string `yaml:"service_tier"`
}

// JWTConfig holds JWT validation settings.
type JWTConfig struct {
	Issuer   string `yaml:"issuer"`   // optional; validated when set
	Audience string `yaml:"audience"` // optional; validated when set
	JWKSURL  string `yaml:"jwks_url"` // required for type=jwt
}

// RateLimitConfig holds per-tier request rate limits.
type RateLimitConfig struct {
	Enabled           bool           `yaml:"enabled"`             // default: false
	RequestsPerMinute int            `yaml:"requests_per_minute"` // default tier limit, default: 60
	Tiers             map[string]int `yaml:"tiers"`               // per-tier overrides
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// DebugConfig holds debug logging settings. The BOTE_DEBUG and
// BOTE_DEBUG_LEVEL environment variables override these.
type DebugConfig struct {
	Categories string `yaml:"categories"` // comma-separated, e.g. "provider,engine"
	Level      string `yaml:"level"`      // default: "info"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 300 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL: "https://api.v0.dev/v1",
			Timeout: 120 * time.Second,
		},
		Engine: EngineConfig{
			MaxMessages: 1000,
			MaxTools:    128,
		},
		Auth: AuthConfig{
			Type: "none",
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Debug: DebugConfig{
			Level: "info",
		},
	}
}
