// Package otpflow tracks the OTP step of registration and password reset.
//
// State travels in a signed cookie so the send time, and with it the resend
// cooldown, survives page reloads without server-side storage.
package otpflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
)

const (
	// CookieName holds the signed OTP state.
	CookieName = "av_otp"
	// Cooldown is the minimum wait between OTP sends.
	Cooldown = 30 * time.Second
	// DefaultTTL bounds how long OTP state is honored.
	DefaultTTL = 15 * time.Minute

	issuer        = "avasar-portal"
	minSecretSize = 32
)

// ErrCooldown reports a resend attempted inside the cooldown window.
var ErrCooldown = errors.New("otp resend cooldown active")

// Step is the visible OTP page step.
type Step string

const (
	StepRequest Step = "request"
	StepVerify  Step = "verify"
	// StepReset is the final password entry step of password reset.
	StepReset Step = "reset"
)

// Purpose scopes state to one flow.
type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeReset    Purpose = "reset"
)

// State is one browser's OTP progress.
type State struct {
	Email    string
	Step     Step
	Purpose  Purpose
	SentAt   time.Time
	Verified bool
}

// CooldownRemaining returns how long until a resend is allowed.
func (s State) CooldownRemaining(now time.Time) time.Duration {
	if s.SentAt.IsZero() {
		return 0
	}
	remaining := s.SentAt.Add(Cooldown).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CooldownSeconds returns CooldownRemaining rounded up to whole seconds.
func (s State) CooldownSeconds(now time.Time) int {
	remaining := s.CooldownRemaining(now)
	return int((remaining + time.Second - 1) / time.Second)
}

// SentTo reports whether an OTP was already sent to email in this flow.
func (s State) SentTo(email string) bool {
	return !s.SentAt.IsZero() && strings.EqualFold(s.Email, strings.TrimSpace(email))
}

// Sender issues OTP codes.
type Sender interface {
	SendOTP(ctx context.Context, email string) error
}

type claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Step     string `json:"step"`
	Purpose  string `json:"purpose"`
	SentAt   int64  `json:"sent_at,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// Manager signs, reads, and advances OTP state.
type Manager struct {
	secret []byte
	jar    sessioncookie.Jar
	ttl    time.Duration
	now    func() time.Time
}

// New builds a manager signing with secret, which must be at least 32 bytes.
func New(secret []byte, jar sessioncookie.Jar) (*Manager, error) {
	if len(secret) < minSecretSize {
		return nil, fmt.Errorf("otp state secret must be at least %d bytes", minSecretSize)
	}
	return &Manager{secret: append([]byte(nil), secret...), jar: jar, ttl: DefaultTTL, now: time.Now}, nil
}

// WithClock returns a copy of m reading time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	clone := *m
	clone.now = now
	return &clone
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Read returns the state for purpose. Missing, tampered, expired, or
// other-purpose cookies read as absent.
func (m *Manager) Read(r *http.Request, purpose Purpose) (State, bool) {
	raw, ok := sessioncookie.Read(r, CookieName)
	if !ok {
		return State{}, false
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || Purpose(parsed.Purpose) != purpose {
		return State{}, false
	}
	state := State{
		Email:    parsed.Email,
		Step:     Step(parsed.Step),
		Purpose:  purpose,
		Verified: parsed.Verified,
	}
	if parsed.SentAt > 0 {
		state.SentAt = time.UnixMilli(parsed.SentAt).UTC()
	}
	switch state.Step {
	case StepRequest, StepVerify, StepReset:
	default:
		state.Step = StepRequest
	}
	return state, true
}

// Write signs state into the OTP cookie.
func (m *Manager) Write(w http.ResponseWriter, r *http.Request, state State) error {
	now := m.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email:    strings.TrimSpace(state.Email),
		Step:     string(state.Step),
		Purpose:  string(state.Purpose),
		Verified: state.Verified,
	}
	if !state.SentAt.IsZero() {
		c.SentAt = state.SentAt.UnixMilli()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign otp state: %w", err)
	}
	m.jar.Set(w, r, sessioncookie.Cookie{Name: CookieName, Value: signed, MaxAge: m.ttl})
	return nil
}

// Clear expires the OTP cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	m.jar.Expire(w, r, CookieName, "/")
}

// Send issues an OTP to state.Email unless the cooldown is active, in which
// case it returns ErrCooldown without calling sender. On success the state
// moves to the verify step with SentAt reset; on failure it is unchanged.
func (m *Manager) Send(ctx context.Context, sender Sender, state State) (State, error) {
	now := m.now()
	if state.CooldownRemaining(now) > 0 {
		return state, ErrCooldown
	}
	if sender == nil {
		return state, errors.New("otp sender is not configured")
	}
	if err := sender.SendOTP(ctx, state.Email); err != nil {
		return state, err
	}
	state.SentAt = now.UTC()
	state.Step = StepVerify
	state.Verified = false
	return state, nil
}
