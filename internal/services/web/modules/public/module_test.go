package public

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	module "github.com/avasar/portal/internal/services/web/module"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/ratelimit"
)

func mountHandler(t *testing.T, gateway ContactGateway, deps module.Dependencies) http.Handler {
	t.Helper()
	mount, err := NewWithGateway(gateway, deps).Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if mount.Prefix != "/" {
		t.Fatalf("Prefix = %q, want %q", mount.Prefix, "/")
	}
	return mount.Handler
}

func postContact(handler http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestModuleIDReturnsPublic(t *testing.T) {
	t.Parallel()

	if got := New(module.Dependencies{}).ID(); got != "public" {
		t.Fatalf("ID() = %q, want %q", got, "public")
	}
	if New(module.Dependencies{}).Healthy() {
		t.Fatal("Healthy() = true without an API client")
	}
}

func TestMarketingPagesRender(t *testing.T) {
	t.Parallel()

	handler := mountHandler(t, &fakeGateway{}, module.Dependencies{})
	tests := []struct {
		path   string
		marker string
	}{
		{path: "/", marker: `href="/register"`},
		{path: "/about", marker: "About Us"},
		{path: "/plan", marker: "₹3,600"},
		{path: "/plan", marker: "₹1,00,000"},
		{path: "/rewards", marker: "Universal King"},
		{path: "/rewards", marker: "2,50,000"},
		{path: "/contact", marker: `action="/contact"`},
	}
	for _, tc := range tests {
		t.Run(tc.path+" "+tc.marker, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
			}
			if body := rr.Body.String(); !strings.Contains(body, tc.marker) {
				t.Fatalf("body missing %q: %q", tc.marker, body)
			}
		})
	}
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	t.Parallel()

	handler := mountHandler(t, &fakeGateway{}, module.Dependencies{})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("response = %d %q, want 302 /", rr.Code, rr.Header().Get("Location"))
	}
}

func TestContactSubmitForwardsValidMessage(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	handler := mountHandler(t, gateway, module.Dependencies{})
	rr := postContact(handler, url.Values{"name": {" Ravi "}, "email": {"ravi@x.com"}, "message": {"Please call me back soon."}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if len(gateway.calls) != 1 || gateway.calls[0].Name != "Ravi" {
		t.Fatalf("calls = %+v, want one trimmed submission", gateway.calls)
	}
	if body := rr.Body.String(); !strings.Contains(body, "Thank you") {
		t.Fatalf("body missing sent notice: %q", body)
	}
}

func TestContactSubmitValidationSkipsAPI(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	handler := mountHandler(t, gateway, module.Dependencies{})
	rr := postContact(handler, url.Values{"name": {""}, "email": {"bad"}, "message": {"short"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if len(gateway.calls) != 0 {
		t.Fatalf("calls = %d, want 0", len(gateway.calls))
	}
	if body := rr.Body.String(); !strings.Contains(body, "Please enter a valid email address") {
		t.Fatalf("body missing email error: %q", body)
	}
}

func TestContactSubmitShowsAPIMessageInline(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{err: apperrors.E(apperrors.KindInvalidInput, "Message rejected")}
	handler := mountHandler(t, gateway, module.Dependencies{})
	rr := postContact(handler, url.Values{"name": {"Ravi"}, "email": {"ravi@x.com"}, "message": {"Please call me back soon."}})
	if body := rr.Body.String(); !strings.Contains(body, "Message rejected") {
		t.Fatalf("body missing api message: %q", body)
	}
}

func TestContactSubmitIsRateLimited(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	handler := mountHandler(t, gateway, module.Dependencies{Limiter: ratelimit.New(1)})
	form := url.Values{"name": {"Ravi"}, "email": {"ravi@x.com"}, "message": {"Please call me back soon."}}
	if rr := postContact(handler, form); rr.Code != http.StatusOK {
		t.Fatalf("first status = %d, want %d", rr.Code, http.StatusOK)
	}
	rr := postContact(handler, form)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if body := rr.Body.String(); !strings.Contains(body, "Too many requests. Please slow down.") {
		t.Fatalf("body missing throttle message: %q", body)
	}
	if len(gateway.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(gateway.calls))
	}
}

func TestHTMXRequestReturnsFragment(t *testing.T) {
	t.Parallel()

	handler := mountHandler(t, &fakeGateway{}, module.Dependencies{})
	req := httptest.NewRequest(http.MethodGet, "/rewards", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	body := rr.Body.String()
	if !strings.Contains(body, `id="rewards-table"`) || strings.Contains(body, "<!doctype html>") {
		t.Fatalf("body = %q, want bare rewards fragment", body)
	}
}
