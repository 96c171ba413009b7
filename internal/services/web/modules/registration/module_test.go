package registration

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/handoff"
	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/otpflow"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/ratelimit"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
	"github.com/avasar/portal/internal/services/web/session"
	"github.com/avasar/portal/internal/services/web/storage/memory"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type harness struct {
	handler http.Handler
	gateway *fakeGateway
	auth    *fakeAuthGateway
	store   *memory.Store
	cookies map[string]*http.Cookie
}

func newHarness(t *testing.T, gateway *fakeGateway, auth *fakeAuthGateway) *harness {
	t.Helper()
	return newHarnessWithLimiter(t, gateway, auth, nil)
}

func newHarnessWithLimiter(t *testing.T, gateway *fakeGateway, auth *fakeAuthGateway, limiter *ratelimit.Limiter) *harness {
	t.Helper()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	otp, err := otpflow.New(testSecret, sessioncookie.Jar{})
	if err != nil {
		t.Fatalf("otpflow.New() error = %v", err)
	}
	store := memory.New()
	deps := module.Dependencies{
		Sessions: session.NewManager(auth, session.Config{}),
		Handoff:  handoff.New(store, sessioncookie.Jar{}, 0),
		OTP:      otp.WithClock(func() time.Time { return now }),
		Limiter:  limiter,
	}
	mux := http.NewServeMux()
	for _, m := range []Module{NewRegisterWithGateway(gateway, deps), NewOTPWithGateway(gateway, deps)} {
		mounted, err := m.Mount()
		if err != nil {
			t.Fatalf("Mount() error = %v", err)
		}
		mux.Handle(mounted.Prefix, mounted.Handler)
		mux.Handle(strings.TrimSuffix(mounted.Prefix, "/"), mounted.Handler)
	}
	return &harness{handler: mux, gateway: gateway, auth: auth, store: store, cookies: map[string]*http.Cookie{}}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(h.cookies, c.Name)
			continue
		}
		h.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return rr
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) post(path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return h.do(req)
}

func aliceForm() url.Values {
	return url.Values{
		"firstName":       {"Alice"},
		"lastName":        {"Lee"},
		"username":        {"alice01"},
		"email":           {"alice@example.com"},
		"phone":           {"9876543210"},
		"password":        {"Secret@123"},
		"confirmPassword": {"Secret@123"},
	}
}

func TestModuleIDsAndPrefixes(t *testing.T) {
	t.Parallel()

	deps := module.Dependencies{}
	tests := []struct {
		module Module
		id     string
		prefix string
	}{
		{module: NewRegister(deps), id: "registration.form", prefix: "/register/"},
		{module: NewOTP(deps), id: "registration.otp", prefix: "/otp/"},
	}
	for _, tc := range tests {
		if got := tc.module.ID(); got != tc.id {
			t.Fatalf("ID() = %q, want %q", got, tc.id)
		}
		if tc.module.Healthy() {
			t.Fatalf("%s Healthy() = true without an API client", tc.id)
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

func TestRegisterToAccountCreation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})

	rr := h.post("/register", aliceForm())
	if rr.Code != http.StatusFound {
		t.Fatalf("register status = %d, want %d: %s", rr.Code, http.StatusFound, rr.Body.String())
	}
	if got, want := rr.Header().Get("Location"), "/otp?email=alice%40example.com"; got != want {
		t.Fatalf("register Location = %q, want %q", got, want)
	}
	if _, ok := h.cookies[handoff.CookieName]; !ok {
		t.Fatal("pending cookie not set")
	}

	rr = h.get("/otp?email=alice%40example.com")
	if rr.Code != http.StatusOK {
		t.Fatalf("otp status = %d, want %d", rr.Code, http.StatusOK)
	}
	if h.gateway.sends() != 1 {
		t.Fatalf("sends = %d, want 1", h.gateway.sends())
	}
	if body := rr.Body.String(); !strings.Contains(body, `action="/otp/verify"`) {
		t.Fatalf("verify form missing: %q", body)
	}

	// A reload must not send a second code.
	h.get("/otp?email=alice%40example.com")
	if h.gateway.sends() != 1 {
		t.Fatalf("sends after reload = %d, want 1", h.gateway.sends())
	}

	rr = h.post("/otp/verify", url.Values{"otp": {"123456"}})
	if got := rr.Header().Get("Location"); got != "/user" {
		t.Fatalf("verify Location = %q, want %q: %s", got, "/user", rr.Body.String())
	}
	registered := h.auth.registrations()
	if len(registered) != 1 {
		t.Fatalf("registrations = %d, want 1", len(registered))
	}
	if registered[0].Username != "alice01" || registered[0].Password != "Secret@123" {
		t.Fatalf("registered = %+v, want alice01 with the original password", registered[0])
	}
	if c := h.cookies[sessioncookie.Name]; c == nil || c.Value != "tok-alice01" {
		t.Fatalf("session cookie = %+v, want tok-alice01", c)
	}
	if _, ok := h.cookies[handoff.CookieName]; ok {
		t.Fatal("pending cookie still set after account creation")
	}
	if h.store.Len() != 0 {
		t.Fatalf("pending records = %d, want 0", h.store.Len())
	}
}

func TestRegisterSubmitRejectsInvalidForm(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})
	form := aliceForm()
	form.Set("confirmPassword", "Different@1")
	rr := h.post("/register", form)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if h.store.Len() != 0 {
		t.Fatalf("pending records = %d, want 0", h.store.Len())
	}
	if body := rr.Body.String(); !strings.Contains(body, "disabled") {
		t.Fatalf("submit should be disabled: %q", body)
	}
}

func TestRegisterSubmitIsThrottledPerClient(t *testing.T) {
	t.Parallel()

	h := newHarnessWithLimiter(t, &fakeGateway{}, &fakeAuthGateway{}, ratelimit.New(5))
	if rr := h.post("/register", aliceForm()); rr.Code != http.StatusFound {
		t.Fatalf("first register status = %d, want %d", rr.Code, http.StatusFound)
	}
	rr := h.post("/register", aliceForm())
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second register status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if !strings.Contains(rr.Body.String(), `value="alice01"`) {
		t.Fatalf("throttled form lost its values: %q", rr.Body.String())
	}
	if h.store.Len() != 1 {
		t.Fatalf("pending records = %d, want 1", h.store.Len())
	}
}

func TestValidateShowsTouchedErrorsAndSubmitState(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})

	partial := url.Values{"firstName": {"A"}, "lastName": {"1"}}
	rr := h.post("/register/validate", partial, "HX-Request", "true", "HX-Trigger-Name", "firstName")
	body := rr.Body.String()
	if !strings.Contains(body, `value="firstName"`) {
		t.Fatalf("touched list missing firstName: %q", body)
	}
	if !strings.Contains(body, `id="register-submit" type="submit" class="button primary" disabled`) {
		t.Fatalf("submit should be disabled: %q", body)
	}
	if strings.Count(body, "hidden>") != 7 {
		t.Fatalf("want only the firstName error visible: %q", body)
	}

	full := aliceForm()
	full.Set("touched", "firstName,lastName")
	rr = h.post("/register/validate", full, "HX-Request", "true", "HX-Trigger-Name", "email")
	if body := rr.Body.String(); strings.Contains(body, " disabled") {
		t.Fatalf("submit should be enabled for a valid form: %q", body)
	}
}

func TestUsernameAvailability(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{taken: map[string]bool{"bob": true}}
	h := newHarness(t, gateway, &fakeAuthGateway{})

	tests := []struct {
		username string
		want     string
	}{
		{username: "alice01", want: "status-available"},
		{username: "bob", want: "status-taken"},
	}
	for _, tc := range tests {
		rr := h.post("/register/username", url.Values{"username": {tc.username}}, "HX-Request", "true")
		if body := rr.Body.String(); !strings.Contains(body, tc.want) {
			t.Fatalf("username %q: body missing %q: %q", tc.username, tc.want, body)
		}
	}

	h.post("/register/username", url.Values{"username": {"a!"}}, "HX-Request", "true")
	if len(gateway.checks) != 2 {
		t.Fatalf("checks = %v, want malformed names skipped", gateway.checks)
	}
}

func TestSponsorLookup(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{sponsors: map[string]api.Sponsor{"REF1": {FirstName: "Ravi", LastName: "Kumar"}}}
	h := newHarness(t, gateway, &fakeAuthGateway{})

	rr := h.post("/register/sponsor", url.Values{"sponsorId": {"NOPE"}}, "HX-Request", "true")
	if body := rr.Body.String(); !strings.Contains(body, "Invalid referral code") {
		t.Fatalf("body = %q, want invalid referral text", body)
	}

	rr = h.get("/register?ref=REF1")
	body := rr.Body.String()
	if !strings.Contains(body, `value="REF1"`) || !strings.Contains(body, "Ravi Kumar") {
		t.Fatalf("referral prefill missing: %q", body)
	}
}

func TestStrengthMeter(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})
	rr := h.post("/register/strength", url.Values{"password": {"Secret@123"}}, "HX-Request", "true")
	body := rr.Body.String()
	if !strings.Contains(body, "strength-5") || !strings.Contains(body, "Very Strong") {
		t.Fatalf("strength fragment = %q", body)
	}
}

func TestResendWithinCooldownMakesNoCall(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})
	h.post("/register", aliceForm())
	h.get("/otp?email=alice%40example.com")

	rr := h.post("/otp/resend", url.Values{})
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if h.gateway.sends() != 1 {
		t.Fatalf("sends = %d, want 1", h.gateway.sends())
	}
	if body := rr.Body.String(); !strings.Contains(body, "Resend in 30s") {
		t.Fatalf("cooldown control missing: %q", body)
	}
}

func TestVerifyWithoutPendingRecordCreatesNoAccount(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})
	h.get("/otp?email=alice%40example.com")

	rr := h.post("/otp/verify", url.Values{"otp": {"123456"}})
	if body := rr.Body.String(); !strings.Contains(body, "Registration data not found. Please register again.") {
		t.Fatalf("body = %q, want register again text", body)
	}
	if got := len(h.auth.registrations()); got != 0 {
		t.Fatalf("registrations = %d, want 0", got)
	}
}

func TestOTPForOtherEmailIsBlocked(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})
	h.post("/register", aliceForm())

	rr := h.get("/otp?email=mallory%40example.com")
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if body := rr.Body.String(); !strings.Contains(body, "This email does not match your registration") {
		t.Fatalf("body = %q, want mismatch text", body)
	}
	if h.gateway.sends() != 0 {
		t.Fatalf("sends = %d, want 0", h.gateway.sends())
	}
}

func TestFailedAccountCreationKeepsRecord(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthGateway{registerErr: apperrors.E(apperrors.KindConflict, "Username already exists")}
	h := newHarness(t, &fakeGateway{}, auth)
	h.post("/register", aliceForm())
	h.get("/otp?email=alice%40example.com")

	rr := h.post("/otp/verify", url.Values{"otp": {"123456"}})
	if body := rr.Body.String(); !strings.Contains(body, "Username already exists") {
		t.Fatalf("body = %q, want server message", body)
	}
	if h.store.Len() != 1 {
		t.Fatalf("pending records = %d, want 1", h.store.Len())
	}
	if _, ok := h.cookies[sessioncookie.Name]; ok {
		t.Fatal("session cookie set after failed registration")
	}
}

func TestChangeEmailPrefillsFromPendingRecord(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGateway{}, &fakeAuthGateway{})
	h.post("/register", aliceForm())
	h.get("/otp?email=alice%40example.com")

	rr := h.post("/otp/change-email", url.Values{})
	if got := rr.Header().Get("Location"); got != "/otp" {
		t.Fatalf("Location = %q, want %q", got, "/otp")
	}
	rr = h.get("/register")
	body := rr.Body.String()
	if !strings.Contains(body, `value="alice01"`) {
		t.Fatalf("form not prefilled: %q", body)
	}
	if strings.Contains(body, "Secret@123") {
		t.Fatal("password echoed back into the form")
	}
}
