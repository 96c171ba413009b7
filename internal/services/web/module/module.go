// Package module defines the feature contract used by web composition.
package module

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/handoff"
	"github.com/avasar/portal/internal/services/web/otpflow"
	"github.com/avasar/portal/internal/services/web/platform/ratelimit"
	"github.com/avasar/portal/internal/services/web/platform/requestmeta"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
	"github.com/avasar/portal/internal/services/web/session"
)

// ResolveSession returns the memoized session for a request.
type ResolveSession func(*http.Request) session.Session

// Dependencies carries shared runtime collaborators into modules.
type Dependencies struct {
	// API is nil when no backend is configured; modules then fall back to
	// unavailable gateways.
	API            *api.Client
	Sessions       *session.Manager
	Handoff        *handoff.Service
	OTP            *otpflow.Manager
	Limiter        *ratelimit.Limiter
	Cookies        sessioncookie.Jar
	RequestMeta    requestmeta.Policy
	ResolveSession ResolveSession
}

// Session resolves the request session, tolerating missing wiring.
func (d Dependencies) Session(r *http.Request) session.Session {
	if d.ResolveSession == nil || r == nil {
		return session.Session{}
	}
	return d.ResolveSession(r)
}

// Token returns the request's API token, or "".
func (d Dependencies) Token(r *http.Request) string {
	token, _ := sessioncookie.ReadSession(r)
	return token
}

// Allow reports whether the client behind r may perform a throttled action.
func (d Dependencies) Allow(r *http.Request, action string) bool {
	return d.Limiter.Allow(action + ":" + d.RequestMeta.ClientIP(r))
}

// Mount describes a module route mount.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module declares the minimum contract required by web composition.
type Module interface {
	ID() string
	Mount() (Mount, error)
}

// HealthReporter is an optional interface for modules that can report their
// operational availability.
type HealthReporter interface {
	Healthy() bool
}
