package pagerender

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	module "github.com/avasar/portal/internal/services/web/module"
	flashnotice "github.com/avasar/portal/internal/services/web/platform/flash"
	"github.com/avasar/portal/internal/services/web/session"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

func textComponent(body string) textFragment {
	return textFragment(body)
}

type textFragment string

func (c textFragment) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(c))
	return err
}

func TestWriteModulePageRendersHTMXFragmentWithStatus(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()

	err := WriteModulePage(rr, req, module.Dependencies{}, ModulePage{
		Base:       NewBase(rr, req, module.Dependencies{}, webtemplates.AreaUser, "user.profile.title"),
		StatusCode: http.StatusCreated,
		Fragment:   textComponent(`<section id="fragment-root">ok</section>`),
	})
	if err != nil {
		t.Fatalf("WriteModulePage() error = %v", err)
	}
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="fragment-root"`) {
		t.Fatalf("body missing fragment marker: %q", body)
	}
	if strings.Contains(strings.ToLower(body), "<!doctype html") {
		t.Fatalf("expected htmx fragment without full document wrapper")
	}
}

func TestWriteModulePageRendersFullPageWithLayout(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	rr := httptest.NewRecorder()
	deps := module.Dependencies{}

	err := WriteModulePage(rr, req, deps, ModulePage{
		Base:       NewBase(rr, req, deps, webtemplates.AreaPublic, "public.about.title"),
		StatusCode: http.StatusAccepted,
		Fragment:   textComponent(`<section id="fragment-root">ok</section>`),
	})
	if err != nil {
		t.Fatalf("WriteModulePage() error = %v", err)
	}
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusAccepted)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content-type = %q, want %q", got, "text/html; charset=utf-8")
	}
	body := rr.Body.String()
	for _, marker := range []string{`<!doctype html>`, `id="main"`, `id="fragment-root"`, `About Us | Avasar`, `href="/login"`} {
		if !strings.Contains(body, marker) {
			t.Fatalf("body missing marker %q: %q", marker, body)
		}
	}
}

func TestWriteModulePageShowsSignedInUser(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	deps := module.Dependencies{ResolveSession: func(*http.Request) session.Session {
		return session.Session{User: &session.UserSummary{ID: "u1", Username: "alice01", FirstName: "Alice", LastName: "Lee", Role: session.RoleUser}}
	}}

	err := WriteModulePage(rr, req, deps, ModulePage{
		Base:     NewBase(rr, req, deps, webtemplates.AreaPublic, ""),
		Fragment: textComponent(`<p>home</p>`),
	})
	if err != nil {
		t.Fatalf("WriteModulePage() error = %v", err)
	}
	body := rr.Body.String()
	for _, marker := range []string{`Alice Lee`, `action="/logout"`, `href="/user"`} {
		if !strings.Contains(body, marker) {
			t.Fatalf("body missing marker %q: %q", marker, body)
		}
	}
}

func TestWriteModulePageRendersToastFromFlashNotice(t *testing.T) {
	t.Parallel()

	seed := httptest.NewRecorder()
	seedReq := httptest.NewRequest(http.MethodGet, "/", nil)
	deps := module.Dependencies{}
	flashnotice.Write(seed, seedReq, deps.Cookies, flashnotice.Notice{Kind: flashnotice.KindSuccess, Message: "Account created! Redirecting..."})

	req := httptest.NewRequest(http.MethodGet, "/user/dashboard", nil)
	for _, c := range seed.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	err := WriteModulePage(rr, req, deps, ModulePage{
		Base:     NewBase(rr, req, deps, webtemplates.AreaUser, ""),
		Fragment: textComponent(`<p>dash</p>`),
	})
	if err != nil {
		t.Fatalf("WriteModulePage() error = %v", err)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="toast"`) || !strings.Contains(body, "Account created! Redirecting...") {
		t.Fatalf("body missing toast: %q", body)
	}
	cleared := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashnotice.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("flash cookie was not cleared")
	}
}

func TestNewBaseResolvesLanguageFromQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/plan?lang=hi-IN", nil)
	rr := httptest.NewRecorder()
	base := NewBase(rr, req, module.Dependencies{}, webtemplates.AreaPublic, "public.plan.title")
	if base.Lang != "hi-IN" {
		t.Fatalf("Lang = %q, want %q", base.Lang, "hi-IN")
	}
	if base.Path != "/plan" || base.Query != "lang=hi-IN" {
		t.Fatalf("Path, Query = %q, %q", base.Path, base.Query)
	}
	if len(base.Languages) < 2 {
		t.Fatalf("Languages = %v, want every catalog locale", base.Languages)
	}
}

func TestWriteFragmentWritesBareComponent(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/register/username", nil)
	rr := httptest.NewRecorder()
	if err := WriteFragment(rr, req, 0, textComponent(`<p id="username-status"></p>`)); err != nil {
		t.Fatalf("WriteFragment() error = %v", err)
	}
	if rr.Code != http.StatusOK || rr.Body.String() != `<p id="username-status"></p>` {
		t.Fatalf("WriteFragment() = %d %q", rr.Code, rr.Body.String())
	}
}
