// Command server runs the bote chat gateway.
//
// Configuration is layered: built-in defaults, a YAML config file
// (--config flag, BOTE_CONFIG env, ./bote.yaml, /etc/bote/config.yaml),
// then BOTE_* environment overrides. A .env file in the working
// directory is loaded first if present.
//
// The upstream API key is resolved per exchange from V0_API_KEY,
// upstream.api_key_file, or upstream.api_key, in that order, so key
// rotation takes effect without a restart.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bote-dev/bote/pkg/api"
	"github.com/bote-dev/bote/pkg/auth"
	"github.com/bote-dev/bote/pkg/auth/apikey"
	authjwt "github.com/bote-dev/bote/pkg/auth/jwt"
	"github.com/bote-dev/bote/pkg/config"
	"github.com/bote-dev/bote/pkg/debug"
	"github.com/bote-dev/bote/pkg/engine"
	"github.com/bote-dev/bote/pkg/observability"
	"github.com/bote-dev/bote/pkg/provider"
	"github.com/bote-dev/bote/pkg/transport"
	transporthttp "github.com/bote-dev/bote/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug.Init(cfg.Debug.Categories, cfg.Debug.Level)

	// Upstream client cache plus a live credential source. The engine
	// asks for the credential once per exchange.
	cache := provider.NewCache(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	credentials := config.NewCredentials(cfg.Upstream)

	eng, err := engine.New(cache, credentials, engine.Config{
		DefaultModel: cfg.Engine.DefaultModel,
		Validation: api.ValidationConfig{
			MaxMessages: cfg.Engine.MaxMessages,
			MaxTools:    cfg.Engine.MaxTools,
		},
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	// The engine serves all three handler roles.
	adapter := transporthttp.NewAdapter(eng, eng, eng, transporthttp.DefaultConfig(),
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(slog.Default()),
	)

	authChain, err := buildAuthChain(cfg.Auth)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}

	var limiter auth.RateLimiter
	if cfg.Auth.RateLimit.Enabled {
		limiter = auth.NewInProcessLimiter(cfg.Auth.RateLimit.Tiers, cfg.Auth.RateLimit.RequestsPerMinute)
		slog.Info("rate limiting enabled",
			"default_rpm", cfg.Auth.RateLimit.RequestsPerMinute,
			"tiers", len(cfg.Auth.RateLimit.Tiers))
	}

	// Build HTTP mux with health and metrics endpoints.
	mux := http.NewServeMux()
	mux.Handle("/", adapter.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	bypass := []string{"/healthz"}
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
		bypass = append(bypass, cfg.Observability.Metrics.Path)
	}

	// Metrics sit outside auth so rejected requests are counted too.
	var handler http.Handler = mux
	handler = auth.Middleware(authChain, limiter, bypass)(handler)
	handler = observability.MetricsMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in background.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"port", cfg.Server.Port,
			"upstream", cfg.Upstream.BaseURL,
			"auth", cfg.Auth.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error.
	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// buildAuthChain assembles the authenticator chain for the configured
// auth type. Config validation has already checked the type value.
func buildAuthChain(cfg config.AuthConfig) (*auth.Chain, error) {
	switch cfg.Type {
	case "", "none":
		return &auth.Chain{DefaultDecision: auth.Yes}, nil

	case "apikey":
		if len(cfg.APIKeys) == 0 {
			return nil, fmt.Errorf("auth.type=apikey requires at least one auth.api_keys entry")
		}
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			entries = append(entries, apikey.RawKeyEntry{
				Key: k.Key,
				Identity: auth.Identity{
					Subject:     k.Subject,
					ServiceTier: k.ServiceTier,
				},
			})
		}
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{apikey.New(entries)},
			DefaultDecision: auth.No,
		}, nil

	case "jwt":
		return &auth.Chain{
			Authenticators: []auth.Authenticator{authjwt.New(authjwt.Config{
				Issuer:   cfg.JWT.Issuer,
				Audience: cfg.JWT.Audience,
				JWKSURL:  cfg.JWT.JWKSURL,
			})},
			DefaultDecision: auth.No,
		}, nil

	default:
		return nil, fmt.Errorf("unknown auth.type %q", cfg.Type)
	}
}
