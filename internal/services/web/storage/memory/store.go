// Package memory provides an in-process pending-registration store for
// tests and single-instance development.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	webstorage "github.com/avasar/portal/internal/services/web/storage"
)

// Store keeps pending records in a mutex-guarded map.
type Store struct {
	mu      sync.Mutex
	records map[string]webstorage.PendingRecord
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{records: map[string]webstorage.PendingRecord{}, now: time.Now}
}

// NewWithClock returns an empty store reading time from now.
func NewWithClock(now func() time.Time) *Store {
	store := New()
	if now != nil {
		store.now = now
	}
	return store
}

// PutPending stores a copy of record.
func (s *Store) PutPending(_ context.Context, record webstorage.PendingRecord) error {
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("pending id is required")
	}
	if len(record.Payload) == 0 {
		return fmt.Errorf("pending payload is required")
	}
	record.Payload = append([]byte(nil), record.Payload...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	s.records[record.ID] = record
	return nil
}

// GetPending returns the record unless missing or expired.
func (s *Store) GetPending(_ context.Context, id string) (webstorage.PendingRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[strings.TrimSpace(id)]
	if !ok {
		return webstorage.PendingRecord{}, false, nil
	}
	if record.Expired(s.now()) {
		delete(s.records, record.ID)
		return webstorage.PendingRecord{}, false, nil
	}
	record.Payload = append([]byte(nil), record.Payload...)
	return record, true, nil
}

// DeletePending removes a record.
func (s *Store) DeletePending(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, strings.TrimSpace(id))
	return nil
}

// PurgeExpired drops every expired record and reports how many it removed.
func (s *Store) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var removed int64
	for id, record := range s.records {
		if record.Expired(now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored records, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
