// Package webctx provides shared web request context helpers.
package webctx

import (
	"context"
	"net/http"
	"sync"

	"github.com/avasar/portal/internal/services/web/session"
)

type sessionStateKey struct{}

// sessionState memoizes one session resolution for the lifetime of a request.
type sessionState struct {
	resolve func(*http.Request) session.Session
	once    sync.Once
	value   session.Session
}

// WithSessionResolver returns r with a memoized session resolver attached.
// Later calls to Session on the request or its descendants resolve at most
// once.
func WithSessionResolver(r *http.Request, resolve func(*http.Request) session.Session) *http.Request {
	if r == nil || resolve == nil {
		return r
	}
	if _, ok := r.Context().Value(sessionStateKey{}).(*sessionState); ok {
		return r
	}
	state := &sessionState{resolve: resolve}
	return r.WithContext(context.WithValue(r.Context(), sessionStateKey{}, state))
}

// Session returns the memoized session, or the zero session when no resolver
// is attached.
func Session(r *http.Request) session.Session {
	if r == nil {
		return session.Session{}
	}
	state, ok := r.Context().Value(sessionStateKey{}).(*sessionState)
	if !ok {
		return session.Session{}
	}
	state.once.Do(func() {
		state.value = state.resolve(r)
	})
	return state.value
}
