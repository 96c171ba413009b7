// Package web parses portal command configuration and runs the web server.
package web

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/avasar/portal/internal/platform/config"
	platformotel "github.com/avasar/portal/internal/platform/otel"
	"github.com/avasar/portal/internal/services/web"
)

const serviceName = "avasar-portal"

// Config holds the web command configuration.
type Config struct {
	HTTPAddr   string `env:"AVASAR_WEB_HTTP_ADDR" envDefault:"localhost:3000"`
	APIBaseURL string `env:"AVASAR_WEB_API_URL" envDefault:"http://localhost:5000/api"`
	// OTPSecret is hex encoded; see cmd/otp-secret.
	OTPSecret         string        `env:"AVASAR_WEB_OTP_SECRET"`
	HandoffTTL        time.Duration `env:"AVASAR_WEB_HANDOFF_TTL" envDefault:"30m"`
	SessionMaxAge     time.Duration `env:"AVASAR_WEB_SESSION_MAX_AGE" envDefault:"168h"`
	SessionCacheTTL   time.Duration `env:"AVASAR_WEB_SESSION_CACHE_TTL" envDefault:"5m"`
	RequestsPerMinute int           `env:"AVASAR_WEB_REQUESTS_PER_MINUTE" envDefault:"20"`
	TrustProxy        bool          `env:"AVASAR_WEB_TRUST_PROXY"`

	Store         string        `env:"AVASAR_WEB_STORE" envDefault:"memory"`
	SQLitePath    string        `env:"AVASAR_WEB_SQLITE_PATH" envDefault:"data/portal.db"`
	RedisURL      string        `env:"AVASAR_WEB_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	PurgeInterval time.Duration `env:"AVASAR_WEB_PURGE_INTERVAL" envDefault:"10m"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelDisabled bool   `env:"OTEL_SDK_DISABLED"`
}

// ParseConfig parses the environment, then flags, into a Config. A nil
// environ reads the process environment.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := config.ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "Backend REST API base URL")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Pending registration store: memory, sqlite, or redis")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path for -store=sqlite")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for -store=redis")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "Trust X-Forwarded-* headers")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return Config{}, errors.New("http address is required")
	}
	return cfg, nil
}

// serverConfig maps command configuration onto the web server's.
func (c Config) serverConfig() (web.Config, error) {
	var secret []byte
	if raw := strings.TrimSpace(c.OTPSecret); raw != "" {
		decoded, err := hex.DecodeString(raw)
		if err != nil {
			return web.Config{}, fmt.Errorf("decode otp secret: %w", err)
		}
		secret = decoded
	}
	return web.Config{
		HTTPAddr:          c.HTTPAddr,
		APIBaseURL:        c.APIBaseURL,
		OTPSecret:         secret,
		HandoffTTL:        c.HandoffTTL,
		SessionMaxAge:     c.SessionMaxAge,
		SessionCacheTTL:   c.SessionCacheTTL,
		RequestsPerMinute: c.RequestsPerMinute,
		TrustProxy:        c.TrustProxy,
		Logger:            log.Default(),
		Store:             c.Store,
		SQLitePath:        c.SQLitePath,
		RedisURL:          c.RedisURL,
		PurgeInterval:     c.PurgeInterval,
	}, nil
}

// Run starts the portal and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	serverCfg, err := cfg.serverConfig()
	if err != nil {
		return err
	}
	if len(serverCfg.OTPSecret) == 0 {
		log.Printf("no otp secret configured; in-flight OTP flows will not survive a restart")
	}

	shutdown, err := platformotel.Setup(ctx, platformotel.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		Disabled:    cfg.OTelDisabled,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("flush traces: %v", err)
		}
	}()

	server, err := web.NewServer(ctx, serverCfg)
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}
