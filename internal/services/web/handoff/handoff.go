// Package handoff carries a validated registration from the registration form
// to OTP verification.
//
// The record lives in a storage.PendingStore as sealed ciphertext. The seal
// key exists only in a browser-session cookie, so a record cannot be read
// after the browser session ends and the server never holds the password in
// plaintext.
package handoff

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/avasar/portal/internal/platform/id"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
	"github.com/avasar/portal/internal/services/web/storage"
)

const (
	// CookieName holds "<record id>.<seal key>".
	CookieName = "av_pending"
	// Version is bumped whenever the sealed profile shape changes.
	Version = 1
	// DefaultTTL bounds how long a pending registration stays usable.
	DefaultTTL = 30 * time.Minute

	keySize   = 32
	nonceSize = 24
)

var (
	// ErrNotFound reports a missing, expired, or foreign record.
	ErrNotFound = errors.New("pending registration not found")
	// ErrVersion reports a record written by an incompatible release.
	ErrVersion = errors.New("pending registration version mismatch")
	// ErrSealed reports a record that could not be unsealed.
	ErrSealed = errors.New("pending registration cannot be opened")
)

// Registration is the profile collected by the registration form.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	SponsorID string `json:"sponsorId,omitempty"`
}

// PendingRegistration is an unsealed hand-off record.
type PendingRegistration struct {
	Version int
	ID      string
	Registration
	CreatedAt time.Time
	ExpiresAt time.Time
}

type sealedBody struct {
	Version      int          `json:"version"`
	Registration Registration `json:"registration"`
	CreatedAt    time.Time    `json:"createdAt"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

// Service reads and writes pending registrations for one browser.
type Service struct {
	store  storage.PendingStore
	jar    sessioncookie.Jar
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

// New builds a hand-off service. A non-positive ttl uses DefaultTTL.
func New(store storage.PendingStore, jar sessioncookie.Jar, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, jar: jar, ttl: ttl, now: time.Now, random: rand.Reader}
}

// Put seals reg under a fresh id and key, replaces any record this browser
// already holds, and writes the hand-off cookie.
func (s *Service) Put(ctx context.Context, w http.ResponseWriter, r *http.Request, reg Registration) (PendingRegistration, error) {
	if s == nil || s.store == nil {
		return PendingRegistration{}, storage.ErrNotConfigured
	}
	if previousID, _, ok := readCookie(r); ok {
		if err := s.store.DeletePending(ctx, previousID); err != nil {
			return PendingRegistration{}, fmt.Errorf("replace pending registration: %w", err)
		}
	}

	recordID, err := id.NewID()
	if err != nil {
		return PendingRegistration{}, fmt.Errorf("generate pending id: %w", err)
	}
	var key [keySize]byte
	if _, err := io.ReadFull(s.random, key[:]); err != nil {
		return PendingRegistration{}, fmt.Errorf("generate seal key: %w", err)
	}

	now := s.now().UTC()
	pending := PendingRegistration{
		Version:      Version,
		ID:           recordID,
		Registration: reg,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	payload, err := s.seal(pending, &key)
	if err != nil {
		return PendingRegistration{}, err
	}
	if err := s.store.PutPending(ctx, storage.PendingRecord{
		ID:        recordID,
		Payload:   payload,
		CreatedAt: pending.CreatedAt,
		ExpiresAt: pending.ExpiresAt,
	}); err != nil {
		return PendingRegistration{}, fmt.Errorf("store pending registration: %w", err)
	}
	s.jar.Set(w, r, sessioncookie.Cookie{
		Name:  CookieName,
		Value: recordID + "." + base64.RawURLEncoding.EncodeToString(key[:]),
	})
	return pending, nil
}

// Load returns the browser's pending registration.
func (s *Service) Load(ctx context.Context, r *http.Request) (PendingRegistration, error) {
	if s == nil || s.store == nil {
		return PendingRegistration{}, storage.ErrNotConfigured
	}
	recordID, key, ok := readCookie(r)
	if !ok {
		return PendingRegistration{}, ErrNotFound
	}
	record, found, err := s.store.GetPending(ctx, recordID)
	if err != nil {
		return PendingRegistration{}, fmt.Errorf("load pending registration: %w", err)
	}
	if !found {
		return PendingRegistration{}, ErrNotFound
	}
	pending, err := s.open(record.Payload, key)
	if err != nil {
		return PendingRegistration{}, err
	}
	if !s.now().Before(pending.ExpiresAt) {
		return PendingRegistration{}, ErrNotFound
	}
	pending.ID = recordID
	return pending, nil
}

// Delete removes the browser's pending registration and its cookie.
func (s *Service) Delete(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if s == nil || s.store == nil {
		return storage.ErrNotConfigured
	}
	s.jar.Expire(w, r, CookieName, "/")
	recordID, _, ok := readCookie(r)
	if !ok {
		return nil
	}
	if err := s.store.DeletePending(ctx, recordID); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

// payload layout: version byte, nonce, secretbox(json body).
func (s *Service) seal(pending PendingRegistration, key *[keySize]byte) ([]byte, error) {
	body, err := json.Marshal(sealedBody{
		Version:      pending.Version,
		Registration: pending.Registration,
		CreatedAt:    pending.CreatedAt,
		ExpiresAt:    pending.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode pending registration: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.random, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, 1+nonceSize+len(body)+secretbox.Overhead)
	out = append(out, byte(Version))
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, body, &nonce, key), nil
}

func (s *Service) open(payload []byte, key *[keySize]byte) (PendingRegistration, error) {
	if len(payload) < 1+nonceSize+secretbox.Overhead {
		return PendingRegistration{}, ErrSealed
	}
	if int(payload[0]) != Version {
		return PendingRegistration{}, ErrVersion
	}
	var nonce [nonceSize]byte
	copy(nonce[:], payload[1:1+nonceSize])
	body, ok := secretbox.Open(nil, payload[1+nonceSize:], &nonce, key)
	if !ok {
		return PendingRegistration{}, ErrSealed
	}
	var decoded sealedBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return PendingRegistration{}, ErrSealed
	}
	if decoded.Version != Version {
		return PendingRegistration{}, ErrVersion
	}
	return PendingRegistration{
		Version:      decoded.Version,
		Registration: decoded.Registration,
		CreatedAt:    decoded.CreatedAt,
		ExpiresAt:    decoded.ExpiresAt,
	}, nil
}

func readCookie(r *http.Request) (string, *[keySize]byte, bool) {
	raw, ok := sessioncookie.Read(r, CookieName)
	if !ok {
		return "", nil, false
	}
	recordID, encodedKey, ok := strings.Cut(raw, ".")
	if !ok || recordID == "" {
		return "", nil, false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil || len(decoded) != keySize {
		return "", nil, false
	}
	var key [keySize]byte
	copy(key[:], decoded)
	return recordID, &key, true
}
