package i18n

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
)

func TestResolveTagPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		cookie      string
		accept      string
		want        string
		wantPersist bool
	}{
		{name: "default", target: "/", want: "en-US"},
		{name: "query wins", target: "/?lang=hi", cookie: "en-US", accept: "en", want: "hi-IN", wantPersist: true},
		{name: "cookie before header", target: "/", cookie: "hi-IN", accept: "en-US", want: "hi-IN"},
		{name: "accept language", target: "/", accept: "hi-IN,hi;q=0.9", want: "hi-IN"},
		{name: "unsupported query ignored", target: "/?lang=zz-ZZ", want: "en-US"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tc.cookie})
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			tag, persist := ResolveTag(req)
			if tag.String() != tc.want {
				t.Fatalf("ResolveTag() = %q, want %q", tag, tc.want)
			}
			if persist != tc.wantPersist {
				t.Fatalf("persist = %v, want %v", persist, tc.wantPersist)
			}
		})
	}
}

func TestResolvePersistsQueryLanguage(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	_, lang := Resolve(rr, httptest.NewRequest(http.MethodGet, "/?lang=hi-IN", nil), sessioncookie.Jar{})
	if lang != "hi-IN" {
		t.Fatalf("lang = %q, want hi-IN", lang)
	}
	cookie, err := http.ParseSetCookie(rr.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}
	if cookie.Name != LangCookieName || cookie.Value != "hi-IN" {
		t.Fatalf("cookie = %s=%s", cookie.Name, cookie.Value)
	}
}

func TestErrorMessagePrefersServerText(t *testing.T) {
	t.Parallel()

	loc := Printer("en-US")
	if got := ErrorMessage(loc, apperrors.E(apperrors.KindConflict, "Email already registered"), "auth.register.failed"); got != "Email already registered" {
		t.Fatalf("ErrorMessage(server) = %q", got)
	}
	if got := ErrorMessage(loc, errors.New("dial tcp: refused"), "auth.register.failed"); got != "Registration failed." {
		t.Fatalf("ErrorMessage(fallback) = %q", got)
	}
	if got := ErrorMessage(loc, apperrors.EK(apperrors.KindNotFound, "otp.registration_missing", ""), "otp.verify_failed"); got != "Registration data not found. Please register again." {
		t.Fatalf("ErrorMessage(key) = %q", got)
	}
	if got := ErrorMessage(loc, nil, "auth.register.failed"); got != "" {
		t.Fatalf("ErrorMessage(nil) = %q, want empty", got)
	}
}

func TestOptionsMarksActive(t *testing.T) {
	t.Parallel()

	options := Options("hi-IN")
	if len(options) < 2 {
		t.Fatalf("len(options) = %d, want >= 2", len(options))
	}
	for _, option := range options {
		if option.Active != (option.Tag == "hi-IN") {
			t.Fatalf("option %+v active mismatch", option)
		}
	}
}
