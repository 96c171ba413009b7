package webctx

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/avasar/portal/internal/services/web/session"
)

func TestSessionWithoutResolverIsZero(t *testing.T) {
	t.Parallel()

	if got := Session(nil); got.User != nil || got.Loading {
		t.Fatalf("Session(nil) = %+v, want zero", got)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := Session(req); got.User != nil {
		t.Fatalf("Session() = %+v, want zero", got)
	}
	if got := WithSessionResolver(req, nil); got != req {
		t.Fatal("WithSessionResolver(nil resolver) changed the request")
	}
}

func TestSessionResolvesOncePerRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	resolve := func(*http.Request) session.Session {
		calls.Add(1)
		return session.Session{User: &session.UserSummary{ID: "u1"}}
	}
	req := WithSessionResolver(httptest.NewRequest(http.MethodGet, "/user", nil), resolve)
	// A second attach keeps the first memo.
	req = WithSessionResolver(req, resolve)
	for range 3 {
		if got := Session(req); got.User == nil || got.User.ID != "u1" {
			t.Fatalf("Session() = %+v, want user u1", got)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("resolve calls = %d, want 1", got)
	}
}
