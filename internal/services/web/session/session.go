// Package session owns who is signed in to the portal.
//
// The browser holds only the API token. Manager turns a token into a
// validated user, caching results so most requests never reach the API.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/avasar/portal/internal/platform/timeouts"
	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// Role is a portal access role. RoleNone marks pages open to everyone.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	// DefaultCacheTTL bounds how long a validated token is trusted.
	DefaultCacheTTL = 5 * time.Minute

	loginFailedKey    = "auth.login.failed"
	registerFailedKey = "auth.register.failed"
)

// UserSummary is the signed-in user as the portal sees it.
type UserSummary struct {
	ID              string
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Role            Role
	ReferralCode    string
	Rank            string
	Phone           string
	ProfilePhotoURL string
	IsActive        bool
	JoinedAt        time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *UserSummary) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// FullName joins first and last name, falling back to the username.
func (u *UserSummary) FullName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

// FromAPI converts a backend user document.
func FromAPI(user api.User) UserSummary {
	role := RoleUser
	if Role(user.Role) == RoleAdmin {
		role = RoleAdmin
	}
	return UserSummary{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Role:            role,
		ReferralCode:    user.ReferralCode,
		Rank:            user.Rank,
		Phone:           user.Phone,
		ProfilePhotoURL: user.ProfilePhoto,
		IsActive:        user.IsActive,
		JoinedAt:        user.JoinedAt,
	}
}

// Session is the resolved state for one request.
type Session struct {
	User *UserSummary
	// Loading is set while token validation is still in flight.
	Loading bool
	// Cleared is set when the token failed validation and the cookie
	// should be removed.
	Cleared bool
}

// Result is the outcome of Login or Register. Failures never panic or
// return errors; Message carries server text and Key the fallback copy.
type Result struct {
	Success bool
	Message string
	Key     string
	Err     error
	Session Session
	Token   string
}

// AuthGateway is the subset of the API the session needs.
type AuthGateway interface {
	Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error)
	Profile(ctx context.Context, token string) (api.User, error)
}

// Config tunes bootstrap validation.
type Config struct {
	// BootstrapWait bounds how long Resolve blocks on validation before
	// reporting Loading.
	BootstrapWait time.Duration
	CacheTTL      time.Duration
}

type cacheEntry struct {
	user      UserSummary
	expiresAt time.Time
}

// Manager validates tokens and caches the resulting users.
type Manager struct {
	gateway AuthGateway
	wait    time.Duration
	ttl     time.Duration
	now     func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	cache     map[string]cacheEntry
	lastSweep time.Time
	// logouts counts Logout calls; a validation that saw a different count
	// when it started does not cache its result.
	logouts   uint64
}

// NewManager builds a manager over gateway.
func NewManager(gateway AuthGateway, cfg Config) *Manager {
	if cfg.BootstrapWait <= 0 {
		cfg.BootstrapWait = timeouts.SessionBootstrap
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	return &Manager{
		gateway: gateway,
		wait:    cfg.BootstrapWait,
		ttl:     cfg.CacheTTL,
		now:     time.Now,
		cache:   map[string]cacheEntry{},
	}
}

// Login authenticates and caches the user under the returned token.
func (m *Manager) Login(ctx context.Context, email string, password string) Result {
	if m == nil || m.gateway == nil {
		return failure(apperrors.E(apperrors.KindUnavailable, ""), loginFailedKey)
	}
	resp, err := m.gateway.Login(ctx, api.Credentials{Email: strings.TrimSpace(email), Password: password})
	return m.complete(resp, err, loginFailedKey)
}

// Register creates the account. Callers invoke it only after the email was
// verified.
func (m *Manager) Register(ctx context.Context, profile api.RegisterRequest) Result {
	if m == nil || m.gateway == nil {
		return failure(apperrors.E(apperrors.KindUnavailable, ""), registerFailedKey)
	}
	resp, err := m.gateway.Register(ctx, profile)
	return m.complete(resp, err, registerFailedKey)
}

func (m *Manager) complete(resp api.AuthResponse, err error, fallbackKey string) Result {
	if err != nil {
		return failure(err, fallbackKey)
	}
	token := strings.TrimSpace(resp.Token)
	if token == "" {
		return failure(apperrors.E(apperrors.KindUnavailable, ""), fallbackKey)
	}
	user := FromAPI(resp.User)
	m.store(token, user)
	return Result{Success: true, Token: token, Session: Session{User: &user}}
}

func failure(err error, fallbackKey string) Result {
	return Result{Message: apperrors.Message(err), Key: fallbackKey, Err: err}
}

// Logout forgets the cached user for token.
func (m *Manager) Logout(token string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, strings.TrimSpace(token))
	m.logouts++
}

// UpdateUser merges the non-zero fields of a server-returned user into the
// cached session without re-fetching. It reports false when token has no
// cached session.
func (m *Manager) UpdateUser(token string, update api.User) (UserSummary, bool) {
	if m == nil {
		return UserSummary{}, false
	}
	token = strings.TrimSpace(token)
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.cache[token]
	if !ok {
		return UserSummary{}, false
	}
	merged := merge(entry.user, FromAPI(update), update.Role != "", update.HasActive())
	entry.user = merged
	m.cache[token] = entry
	return merged, true
}

func merge(base UserSummary, update UserSummary, roleSet bool, activeSet bool) UserSummary {
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	set(&base.ID, update.ID)
	set(&base.Username, update.Username)
	set(&base.Email, update.Email)
	set(&base.FirstName, update.FirstName)
	set(&base.LastName, update.LastName)
	set(&base.ReferralCode, update.ReferralCode)
	set(&base.Rank, update.Rank)
	set(&base.Phone, update.Phone)
	set(&base.ProfilePhotoURL, update.ProfilePhotoURL)
	if roleSet {
		base.Role = update.Role
	}
	if activeSet {
		base.IsActive = update.IsActive
	}
	if !update.JoinedAt.IsZero() {
		base.JoinedAt = update.JoinedAt
	}
	return base
}

// Resolve returns the session for token.
//
// Validation of one token is shared by concurrent callers and runs detached
// from ctx so an abandoned request still warms the cache. Callers wait at
// most BootstrapWait; a slower validation reports Loading. Any validation
// failure reports Cleared.
func (m *Manager) Resolve(ctx context.Context, token string) Session {
	token = strings.TrimSpace(token)
	if m == nil || token == "" {
		return Session{}
	}
	if user, ok := m.cached(token); ok {
		return Session{User: &user}
	}
	if m.gateway == nil {
		return Session{Cleared: true}
	}

	detached := context.WithoutCancel(ctx)
	results := m.group.DoChan(token, func() (any, error) {
		started := m.logoutCount()
		validateCtx, cancel := context.WithTimeout(detached, timeouts.APIRequest)
		defer cancel()
		profile, err := m.gateway.Profile(validateCtx, token)
		if err != nil {
			m.forget(token)
			return nil, err
		}
		user := FromAPI(profile)
		m.storeUnlessLoggedOut(token, user, started)
		return user, nil
	})

	timer := time.NewTimer(m.wait)
	defer timer.Stop()
	select {
	case res := <-results:
		if res.Err != nil {
			return Session{Cleared: true}
		}
		user := res.Val.(UserSummary)
		return Session{User: &user}
	case <-timer.C:
		return Session{Loading: true}
	case <-ctx.Done():
		return Session{Loading: true}
	}
}

func (m *Manager) cached(token string) (UserSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.cache[token]
	if !ok {
		return UserSummary{}, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.cache, token)
		return UserSummary{}, false
	}
	return entry.user, true
}

func (m *Manager) logoutCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logouts
}

func (m *Manager) store(token string, user UserSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeLocked(token, user)
}

// storeUnlessLoggedOut caches user only if no Logout ran since started was
// read.
func (m *Manager) storeUnlessLoggedOut(token string, user UserSummary, started uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logouts != started {
		return
	}
	m.storeLocked(token, user)
}

func (m *Manager) storeLocked(token string, user UserSummary) {
	now := m.now()
	if now.Sub(m.lastSweep) >= m.ttl {
		for key, entry := range m.cache {
			if !now.Before(entry.expiresAt) {
				delete(m.cache, key)
			}
		}
		m.lastSweep = now
	}
	m.cache[token] = cacheEntry{user: user, expiresAt: now.Add(m.ttl)}
}

func (m *Manager) forget(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, token)
}
