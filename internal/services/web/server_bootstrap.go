package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/avasar/portal/internal/platform/timeouts"
	"github.com/avasar/portal/internal/services/web/storage"
	"github.com/avasar/portal/internal/services/web/storage/memory"
	"github.com/avasar/portal/internal/services/web/storage/redis"
	"github.com/avasar/portal/internal/services/web/storage/sqlite"
)

// Store kinds accepted by Config.Store.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

const defaultPurgeInterval = 10 * time.Minute

// Server hosts the portal HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      storage.PendingStore
	logger     *log.Logger
	purgeStop  context.CancelFunc
	purgeDone  chan struct{}
}

// purger is implemented by stores that need expired records swept.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// OpenStore opens the pending registration store cfg selects.
func OpenStore(ctx context.Context, cfg Config) (storage.PendingStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", StoreMemory:
		return memory.New(), nil
	case StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case StoreRedis:
		store, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// NewServer builds a configured portal server.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	cfg = withDefaults(cfg)

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	handler, err := NewHandler(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build handler: %w", err)
	}

	s := &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:  store,
		logger: cfg.Logger,
	}
	if p, ok := store.(purger); ok {
		interval := cfg.PurgeInterval
		if interval <= 0 {
			interval = defaultPurgeInterval
		}
		s.purgeStop, s.purgeDone = startPurgeWorker(p, interval, cfg.Logger)
	}
	return s, nil
}

// startPurgeWorker sweeps expired hand-off records until stopped.
func startPurgeWorker(p purger, interval time.Duration, logger *log.Logger) (context.CancelFunc, chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := p.PurgeExpired(ctx)
				if err != nil {
					logger.Printf("purge expired registrations: %v", err)
					continue
				}
				if removed > 0 {
					logger.Printf("purged %d expired registrations", removed)
				}
			}
		}
	}()
	return cancel, done
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	s.logger.Printf("portal listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close stops background work and releases the store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.purgeStop != nil {
		s.purgeStop()
		<-s.purgeDone
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Printf("close pending store: %v", err)
		}
	}
}
