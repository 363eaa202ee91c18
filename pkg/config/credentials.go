package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bote-dev/bote/pkg/debug"
)

// EnvAPIKey is the environment variable consulted first for the
// upstream credential.
const EnvAPIKey = "V0_API_KEY"

// ErrNoCredential is returned when neither the environment nor the
// configuration provides an upstream API key.
var ErrNoCredential = errors.New("no upstream API key configured")

// Credentials resolves the upstream API key at call time. Precedence:
// the V0_API_KEY environment variable, then the configured key file
// (re-read when its modification time changes), then the static
// api_key value. Resolution happens per exchange, so a changed key is
// picked up on the next exchange without a restart.
type Credentials struct {
	apiKey     string
	apiKeyFile string

	mu       sync.Mutex
	cached   string
	fileTime time.Time
}

// NewCredentials creates a credential source from the upstream
// configuration.
func NewCredentials(cfg UpstreamConfig) *Credentials {
	return &Credentials{
		apiKey:     cfg.APIKey,
		apiKeyFile: cfg.APIKeyFile,
	}
}

// Credential returns the upstream API key, or ErrNoCredential when no
// source provides one.
func (c *Credentials) Credential() (string, error) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		return v, nil
	}

	if c.apiKeyFile != "" {
		key, err := c.readKeyFile()
		if err != nil {
			slog.Warn("reading upstream API key file", "path", c.apiKeyFile, "error", err)
		} else if key != "" {
			return key, nil
		}
	}

	if c.apiKey != "" {
		return c.apiKey, nil
	}

	return "", ErrNoCredential
}

// readKeyFile returns the trimmed key file content, re-reading the
// file only when its modification time has changed.
func (c *Credentials) readKeyFile() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.apiKeyFile)
	if err != nil {
		return "", err
	}
	if c.cached != "" && info.ModTime().Equal(c.fileTime) {
		return c.cached, nil
	}

	data, err := os.ReadFile(c.apiKeyFile)
	if err != nil {
		return "", err
	}

	key := strings.TrimSpace(string(data))
	if c.cached != "" && key != c.cached {
		debug.Log("config", "upstream API key file changed", "path", c.apiKeyFile)
	}
	c.cached = key
	c.fileTime = info.ModTime()
	return key, nil
}
