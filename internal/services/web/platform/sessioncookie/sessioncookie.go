// Package sessioncookie centralizes the portal's browser cookie behavior.
//
// Every portal cookie is HttpOnly and SameSite=Lax. Secure is derived from
// the request scheme under the configured proxy policy.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/avasar/portal/internal/services/web/platform/requestmeta"
)

// Name is the session cookie carrying the backend API token.
const Name = "av_session"

// Jar writes and expires portal cookies under one scheme policy.
type Jar struct {
	Policy requestmeta.Policy
	// SessionMaxAge bounds the session cookie lifetime. Zero makes it a
	// browser-session cookie.
	SessionMaxAge time.Duration
}

// Cookie describes one portal cookie write.
type Cookie struct {
	Name  string
	Value string
	// Path defaults to "/".
	Path string
	// MaxAge of zero writes a browser-session cookie.
	MaxAge time.Duration
}

// Read returns the trimmed value of the named cookie when present.
func Read(r *http.Request, name string) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// ReadSession returns the session token cookie value when present.
func ReadSession(r *http.Request) (string, bool) {
	return Read(r, Name)
}

// Set writes a cookie for the current request.
func (j Jar) Set(w http.ResponseWriter, r *http.Request, c Cookie) {
	if w == nil {
		return
	}
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    strings.TrimSpace(c.Value),
		Path:     cookiePath(c.Path),
		HttpOnly: true,
		Secure:   j.Policy.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
	if c.MaxAge > 0 {
		cookie.MaxAge = int(c.MaxAge / time.Second)
	}
	http.SetCookie(w, cookie)
}

// Expire deletes the named cookie at path.
func (j Jar) Expire(w http.ResponseWriter, r *http.Request, name string, path string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     cookiePath(path),
		HttpOnly: true,
		Secure:   j.Policy.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// WriteSession stores the API token in the session cookie.
func (j Jar) WriteSession(w http.ResponseWriter, r *http.Request, token string) {
	j.Set(w, r, Cookie{Name: Name, Value: token, MaxAge: j.SessionMaxAge})
}

// ClearSession expires the session cookie.
func (j Jar) ClearSession(w http.ResponseWriter, r *http.Request) {
	j.Expire(w, r, Name, "/")
}

func cookiePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	return path
}
