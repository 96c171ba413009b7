// Package storage declares persistence for portal-owned hand-off state.
//
// The portal owns no domain data. The only thing it persists is the sealed
// pending registration between the registration form and OTP verification.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by nil or closed stores.
var ErrNotConfigured = errors.New("storage is not configured")

// PendingRecord is one sealed pending registration.
//
// Payload is opaque ciphertext; stores never see the plaintext profile.
type PendingRecord struct {
	ID        string
	Payload   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (r PendingRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// PendingStore persists pending registration records.
//
// Get must report expired records as missing.
type PendingStore interface {
	PutPending(ctx context.Context, record PendingRecord) error
	GetPending(ctx context.Context, id string) (PendingRecord, bool, error)
	DeletePending(ctx context.Context, id string) error
	Close() error
}
