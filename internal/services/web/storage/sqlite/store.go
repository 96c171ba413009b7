// Package sqlite provides the default pending-registration store backed by
// SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/avasar/portal/internal/platform/storage/sqlitemigrate"
	webstorage "github.com/avasar/portal/internal/services/web/storage"
	"github.com/avasar/portal/internal/services/web/storage/sqlite/migrations"
)

// Store provides SQLite-backed persistence for pending registrations.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a SQLite store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutPending upserts a pending record by id.
func (s *Store) PutPending(ctx context.Context, record webstorage.PendingRecord) error {
	if s == nil || s.sqlDB == nil {
		return webstorage.ErrNotConfigured
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("pending id is required")
	}
	if len(record.Payload) == 0 {
		return fmt.Errorf("pending payload is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO pending_registrations (id, payload, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    payload = excluded.payload,
		    created_at = excluded.created_at,
		    expires_at = excluded.expires_at`,
		record.ID,
		record.Payload,
		timeToUnixMillis(record.CreatedAt),
		timeToUnixMillis(record.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put pending registration: %w", err)
	}
	return nil
}

// GetPending loads a pending record. Expired rows are deleted and reported
// as missing.
func (s *Store) GetPending(ctx context.Context, id string) (webstorage.PendingRecord, bool, error) {
	if s == nil || s.sqlDB == nil {
		return webstorage.PendingRecord{}, false, webstorage.ErrNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return webstorage.PendingRecord{}, false, nil
	}

	var (
		record    webstorage.PendingRecord
		createdAt int64
		expiresAt int64
	)
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, payload, created_at, expires_at FROM pending_registrations WHERE id = ?`,
		id,
	).Scan(&record.ID, &record.Payload, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return webstorage.PendingRecord{}, false, nil
	}
	if err != nil {
		return webstorage.PendingRecord{}, false, fmt.Errorf("get pending registration: %w", err)
	}
	record.CreatedAt = unixMillisToTime(createdAt)
	record.ExpiresAt = unixMillisToTime(expiresAt)

	if record.Expired(s.now()) {
		if err := s.DeletePending(ctx, id); err != nil {
			return webstorage.PendingRecord{}, false, err
		}
		return webstorage.PendingRecord{}, false, nil
	}
	return record, true, nil
}

// DeletePending removes a pending record by id.
func (s *Store) DeletePending(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return webstorage.ErrNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM pending_registrations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

// PurgeExpired deletes every record whose expiry has passed and returns how
// many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, webstorage.ErrNotConfigured
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM pending_registrations WHERE expires_at > 0 AND expires_at <= ?`,
		timeToUnixMillis(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("purge pending registrations: %w", err)
	}
	return result.RowsAffected()
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}
