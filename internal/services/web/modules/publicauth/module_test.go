package publicauth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/avasar/portal/internal/services/web/api"
	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/otpflow"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
	"github.com/avasar/portal/internal/services/web/session"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func mount(t *testing.T, m Module) http.Handler {
	t.Helper()
	mounted, err := m.Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return mounted.Handler
}

func testDeps(t *testing.T, auth session.AuthGateway, now func() time.Time) module.Dependencies {
	t.Helper()
	otp, err := otpflow.New(testSecret, sessioncookie.Jar{})
	if err != nil {
		t.Fatalf("otpflow.New() error = %v", err)
	}
	if now != nil {
		otp = otp.WithClock(now)
	}
	return module.Dependencies{
		Sessions: session.NewManager(auth, session.Config{}),
		OTP:      otp,
	}
}

func post(handler http.Handler, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func get(handler http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func cookieNamed(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestModuleIDsAndPrefixes(t *testing.T) {
	t.Parallel()

	deps := module.Dependencies{}
	tests := []struct {
		module Module
		id     string
		prefix string
	}{
		{module: NewLogin(deps), id: "publicauth.login", prefix: "/login/"},
		{module: NewLogout(deps), id: "publicauth.logout", prefix: "/logout/"},
		{module: NewForgotPassword(deps), id: "publicauth.forgot", prefix: "/forgot-password/"},
	}
	for _, tc := range tests {
		if got := tc.module.ID(); got != tc.id {
			t.Fatalf("ID() = %q, want %q", got, tc.id)
		}
		mounted, err := tc.module.Mount()
		if err != nil {
			t.Fatalf("Mount() error = %v", err)
		}
		if mounted.Prefix != tc.prefix {
			t.Fatalf("Prefix = %q, want %q", mounted.Prefix, tc.prefix)
		}
	}
}

func TestLoginRedirectsByRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role string
		want string
	}{
		{name: "user", role: "user", want: "/user"},
		{name: "admin", role: "admin", want: "/admin"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			auth := fakeAuthGateway{token: "tok-1", user: api.User{ID: "u1", Email: "a@x.io", Role: tc.role}}
			handler := mount(t, NewLogin(testDeps(t, auth, nil)))
			rr := post(handler, "/login", url.Values{"email": {"a@x.io"}, "password": {"secret"}}, nil)
			if rr.Code != http.StatusFound {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
			}
			if got := rr.Header().Get("Location"); got != tc.want {
				t.Fatalf("Location = %q, want %q", got, tc.want)
			}
			c := cookieNamed(rr, sessioncookie.Name)
			if c == nil || c.Value != "tok-1" {
				t.Fatalf("session cookie = %+v, want tok-1", c)
			}
		})
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	t.Parallel()

	auth := fakeAuthGateway{loginErr: apperrors.E(apperrors.KindUnauthorized, "Invalid credentials")}
	handler := mount(t, NewLogin(testDeps(t, auth, nil)))
	rr := post(handler, "/login", url.Values{"email": {"a@x.io"}, "password": {"nope"}}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if body := rr.Body.String(); !strings.Contains(body, "Invalid credentials") {
		t.Fatalf("body missing server message: %q", body)
	}
	if cookieNamed(rr, sessioncookie.Name) != nil {
		t.Fatal("session cookie set on failed login")
	}
}

func TestLoginFailureFallsBackToCatalogText(t *testing.T) {
	t.Parallel()

	auth := fakeAuthGateway{loginErr: apperrors.E(apperrors.KindUnavailable, "")}
	handler := mount(t, NewLogin(testDeps(t, auth, nil)))
	rr := post(handler, "/login", url.Values{"email": {"a@x.io"}, "password": {"nope"}}, nil)
	if body := rr.Body.String(); !strings.Contains(body, "Login failed") {
		t.Fatalf("body missing fallback text: %q", body)
	}
}

func TestLoginValidationSkipsBackend(t *testing.T) {
	t.Parallel()

	auth := fakeAuthGateway{loginErr: apperrors.E(apperrors.KindUnauthorized, "should not be called")}
	handler := mount(t, NewLogin(testDeps(t, auth, nil)))
	rr := post(handler, "/login", url.Values{"email": {"not-an-email"}}, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	body := rr.Body.String()
	if strings.Contains(body, "should not be called") {
		t.Fatalf("backend was called: %q", body)
	}
	if !strings.Contains(body, "Please enter a valid email address") {
		t.Fatalf("body missing email error: %q", body)
	}
}

func TestLoginUnknownSubpathRedirectsHome(t *testing.T) {
	t.Parallel()

	handler := mount(t, NewLogin(module.Dependencies{}))
	rr := get(handler, "/login/whatever", nil)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("response = %d %q, want 302 /", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLogoutClearsSessionCookie(t *testing.T) {
	t.Parallel()

	handler := mount(t, NewLogout(testDeps(t, fakeAuthGateway{}, nil)))
	rr := post(handler, "/logout", url.Values{}, []*http.Cookie{{Name: sessioncookie.Name, Value: "tok-1"}})
	if got := rr.Header().Get("Location"); got != "/login" {
		t.Fatalf("Location = %q, want %q", got, "/login")
	}
	c := cookieNamed(rr, sessioncookie.Name)
	if c == nil || c.MaxAge >= 0 {
		t.Fatalf("session cookie = %+v, want expired", c)
	}

	rr = get(handler, "/logout", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestForgotPasswordFlow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }
	gateway := &fakeResetGateway{}
	handler := mount(t, NewForgotPasswordWithGateway(gateway, testDeps(t, fakeAuthGateway{}, clock)))

	rr := post(handler, "/forgot-password", url.Values{"email": {"alice@example.com"}}, nil)
	if got := rr.Header().Get("Location"); got != "/forgot-password" {
		t.Fatalf("request Location = %q, want %q", got, "/forgot-password")
	}
	otpCookie := cookieNamed(rr, otpflow.CookieName)
	if otpCookie == nil {
		t.Fatal("request did not write otp state")
	}
	if gateway.sends() != 1 {
		t.Fatalf("sends = %d, want 1", gateway.sends())
	}

	page := get(handler, "/forgot-password", []*http.Cookie{otpCookie})
	if body := page.Body.String(); !strings.Contains(body, `action="/forgot-password/verify"`) {
		t.Fatalf("verify step not rendered: %q", body)
	}

	rr = post(handler, "/forgot-password/verify", url.Values{"otp": {"123456"}}, []*http.Cookie{otpCookie})
	if got := rr.Header().Get("Location"); got != "/forgot-password" {
		t.Fatalf("verify Location = %q, want %q", got, "/forgot-password")
	}
	otpCookie = cookieNamed(rr, otpflow.CookieName)

	rr = post(handler, "/forgot-password/reset", url.Values{
		"password":        {"Secret@123"},
		"confirmPassword": {"Secret@123"},
	}, []*http.Cookie{otpCookie})
	if got := rr.Header().Get("Location"); got != "/login" {
		t.Fatalf("reset Location = %q, want %q", got, "/login")
	}
	if got := gateway.resets["alice@example.com"]; got != "Secret@123" {
		t.Fatalf("reset password = %q, want %q", got, "Secret@123")
	}
	if c := cookieNamed(rr, otpflow.CookieName); c == nil || c.MaxAge >= 0 {
		t.Fatalf("otp cookie = %+v, want expired", c)
	}
}

func TestForgotResendHonorsCooldown(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }
	gateway := &fakeResetGateway{}
	handler := mount(t, NewForgotPasswordWithGateway(gateway, testDeps(t, fakeAuthGateway{}, clock)))

	rr := post(handler, "/forgot-password", url.Values{"email": {"alice@example.com"}}, nil)
	otpCookie := cookieNamed(rr, otpflow.CookieName)

	rr = post(handler, "/forgot-password/resend", url.Values{}, []*http.Cookie{otpCookie})
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if gateway.sends() != 1 {
		t.Fatalf("sends = %d, want 1", gateway.sends())
	}

	fragment := get(handler, "/forgot-password/cooldown", []*http.Cookie{otpCookie})
	if body := fragment.Body.String(); !strings.Contains(body, "Resend in 30s") {
		t.Fatalf("cooldown fragment = %q, want remaining seconds", body)
	}
}

func TestForgotResetRequiresVerifiedState(t *testing.T) {
	t.Parallel()

	gateway := &fakeResetGateway{}
	handler := mount(t, NewForgotPasswordWithGateway(gateway, testDeps(t, fakeAuthGateway{}, nil)))
	rr := post(handler, "/forgot-password/reset", url.Values{
		"password":        {"Secret@123"},
		"confirmPassword": {"Secret@123"},
	}, nil)
	if got := rr.Header().Get("Location"); got != "/forgot-password" {
		t.Fatalf("Location = %q, want %q", got, "/forgot-password")
	}
	if len(gateway.resets) != 0 {
		t.Fatalf("resets = %v, want none", gateway.resets)
	}
}

func TestForgotVerifyFailureStaysOnVerifyStep(t *testing.T) {
	t.Parallel()

	gateway := &fakeResetGateway{verifyErr: apperrors.E(apperrors.KindInvalidInput, "Invalid OTP")}
	handler := mount(t, NewForgotPasswordWithGateway(gateway, testDeps(t, fakeAuthGateway{}, nil)))
	rr := post(handler, "/forgot-password", url.Values{"email": {"bob@example.com"}}, nil)
	otpCookie := cookieNamed(rr, otpflow.CookieName)

	rr = post(handler, "/forgot-password/verify", url.Values{"otp": {"000000"}}, []*http.Cookie{otpCookie})
	body := rr.Body.String()
	if !strings.Contains(body, "Invalid OTP") {
		t.Fatalf("body missing server message: %q", body)
	}
	if !strings.Contains(body, `action="/forgot-password/verify"`) {
		t.Fatalf("verify form missing: %q", body)
	}
}
