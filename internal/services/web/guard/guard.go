// Package guard decides whether a request may see a page given who is signed
// in, and enforces that decision as HTTP middleware.
package guard

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/platform/httpx"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
	"github.com/avasar/portal/internal/services/web/routepath"
	"github.com/avasar/portal/internal/services/web/session"
)

// Outcome is what the guard tells the caller to do.
type Outcome int

const (
	Render Outcome = iota
	Checking
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Checking:
		return "checking"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is a guard outcome plus its redirect target, if any.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Decide applies the access rules in order. It has no side effects.
func Decide(user *session.UserSummary, loading bool, requestedPath string, required session.Role) Decision {
	if routepath.IsGuestOnly(requestedPath) {
		switch {
		case loading:
			return Decision{Outcome: Checking}
		case user != nil:
			return Decision{Outcome: RedirectHome, Target: routepath.Home(user.IsAdmin())}
		default:
			return Decision{Outcome: Render}
		}
	}
	if required == session.RoleNone {
		return Decision{Outcome: Render}
	}
	if loading {
		return Decision{Outcome: Checking}
	}
	if user == nil {
		return Decision{Outcome: RedirectLogin, Target: routepath.Login}
	}
	if required == session.RoleAdmin && !user.IsAdmin() {
		return Decision{Outcome: RedirectHome, Target: routepath.UserRoot}
	}
	return Decision{Outcome: Render}
}

// Config wires the middleware to the request session.
type Config struct {
	Required session.Role
	// Resolve returns the memoized session for the request.
	Resolve func(*http.Request) session.Session
	Cookies sessioncookie.Jar
	// Checking renders the interim page shown while the session is still
	// being validated.
	Checking http.Handler
}

// Middleware enforces Decide for every request it wraps.
func Middleware(cfg Config) httpx.Middleware {
	checking := cfg.Checking
	if checking == nil {
		checking = http.HandlerFunc(writeChecking)
	}
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var current session.Session
			if cfg.Resolve != nil {
				current = cfg.Resolve(r)
			}
			if current.Cleared {
				cfg.Cookies.ClearSession(w, r)
			}
			decision := Decide(current.User, current.Loading, r.URL.Path, cfg.Required)
			switch decision.Outcome {
			case Render:
				next.ServeHTTP(w, r)
			case Checking:
				if httpx.IsHTMXRequest(r) {
					httpx.SetHXRefresh(w)
				}
				checking.ServeHTTP(w, r)
			default:
				httpx.WriteRedirect(w, r, decision.Target)
			}
		})
	}
}

const checkingPage = `<!doctype html><html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Avasar</title></head>` +
	`<body><main id="session-checking" aria-busy="true">Checking your session...</main></body></html>`

func writeChecking(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	_ = httpx.WriteHTML(w, http.StatusOK, checkingPage)
}
