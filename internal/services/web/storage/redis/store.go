// Package redis provides a shared pending-registration store for portals
// running more than one instance.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	webstorage "github.com/avasar/portal/internal/services/web/storage"
)

const keyPrefix = "avasar:pending:v1:"

// Store keeps pending records as JSON values with a native Redis TTL.
type Store struct {
	client *goredis.Client
	now    func() time.Time
}

type entry struct {
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Open parses url, connects, and verifies connectivity with PING.
func Open(ctx context.Context, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client), nil
}

// New wraps an existing client.
func New(client *goredis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// Close closes the Redis client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// PutPending stores record until its expiry. Records already expired are
// removed instead.
func (s *Store) PutPending(ctx context.Context, record webstorage.PendingRecord) error {
	if s == nil || s.client == nil {
		return webstorage.ErrNotConfigured
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("pending id is required")
	}
	if len(record.Payload) == 0 {
		return fmt.Errorf("pending payload is required")
	}
	now := s.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now.UTC()
	}

	var ttl time.Duration
	if !record.ExpiresAt.IsZero() {
		ttl = record.ExpiresAt.Sub(now)
		if ttl <= 0 {
			return s.DeletePending(ctx, id)
		}
	}
	value, err := json.Marshal(entry{Payload: record.Payload, CreatedAt: record.CreatedAt.UTC(), ExpiresAt: record.ExpiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("encode pending registration: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, value, ttl).Err(); err != nil {
		return fmt.Errorf("put pending registration: %w", err)
	}
	return nil
}

// GetPending loads a pending record by id.
func (s *Store) GetPending(ctx context.Context, id string) (webstorage.PendingRecord, bool, error) {
	if s == nil || s.client == nil {
		return webstorage.PendingRecord{}, false, webstorage.ErrNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return webstorage.PendingRecord{}, false, nil
	}
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return webstorage.PendingRecord{}, false, nil
	}
	if err != nil {
		return webstorage.PendingRecord{}, false, fmt.Errorf("get pending registration: %w", err)
	}
	var stored entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return webstorage.PendingRecord{}, false, fmt.Errorf("decode pending registration: %w", err)
	}
	record := webstorage.PendingRecord{
		ID:        id,
		Payload:   stored.Payload,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}
	if record.Expired(s.now()) {
		return webstorage.PendingRecord{}, false, nil
	}
	return record, true, nil
}

// DeletePending removes a pending record by id.
func (s *Store) DeletePending(ctx context.Context, id string) error {
	if s == nil || s.client == nil {
		return webstorage.ErrNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}
