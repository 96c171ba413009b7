package web

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avasar/portal/internal/services/web/storage/memory"
	"github.com/avasar/portal/internal/services/web/storage/sqlite"
)

func TestOpenStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := OpenStore(ctx, Config{})
	if err != nil {
		t.Fatalf("OpenStore(default) error = %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("default store = %T, want *memory.Store", store)
	}

	store, err = OpenStore(ctx, Config{Store: "SQLite", SQLitePath: filepath.Join(t.TempDir(), "portal.db")})
	if err != nil {
		t.Fatalf("OpenStore(sqlite) error = %v", err)
	}
	defer store.Close()
	if _, ok := store.(*sqlite.Store); !ok {
		t.Fatalf("sqlite store = %T, want *sqlite.Store", store)
	}

	if _, err := OpenStore(ctx, Config{Store: "etcd"}); err == nil {
		t.Fatal("OpenStore(etcd) error = nil, want error")
	}
}

func TestNewServerRequiresAddress(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(context.Background(), Config{}); err == nil {
		t.Fatal("NewServer() error = nil, want error for empty address")
	}
}

func TestNewServerStartsPurgeWorkerForSQLite(t *testing.T) {
	t.Parallel()

	server, err := NewServer(context.Background(), Config{
		HTTPAddr:   "127.0.0.1:0",
		Store:      StoreSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "portal.db"),
		Logger:     log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if server.purgeStop == nil {
		t.Fatal("purge worker not started for sqlite store")
	}
	server.Close()
}

func TestNewServerStartsPurgeWorkerForMemory(t *testing.T) {
	t.Parallel()

	server, err := NewServer(context.Background(), Config{
		HTTPAddr: "127.0.0.1:0",
		Logger:   log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if server.purgeStop == nil {
		t.Fatal("purge worker not started for memory store")
	}
	server.Close()
}

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, nil
}

func TestPurgeWorkerRunsUntilStopped(t *testing.T) {
	t.Parallel()

	p := &countingPurger{}
	stop, done := startPurgeWorker(p, 5*time.Millisecond, log.New(io.Discard, "", 0))
	deadline := time.Now().Add(2 * time.Second)
	for p.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	<-done
	if got := p.calls.Load(); got < 2 {
		t.Fatalf("purge calls = %d, want at least 2", got)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	server, err := NewServer(context.Background(), Config{
		HTTPAddr: "127.0.0.1:0",
		Logger:   log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
