// Package pagerender centralizes module page rendering behavior.
package pagerender

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	module "github.com/avasar/portal/internal/services/web/module"
	flashnotice "github.com/avasar/portal/internal/services/web/platform/flash"
	"github.com/avasar/portal/internal/services/web/platform/httpx"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

// ModulePage describes a module page response for both full-page and HTMX flows.
type ModulePage struct {
	Base       webtemplates.Base
	StatusCode int
	Fragment   templ.Component
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}

// NewBase resolves the shared layout context for a request: locale, signed-in
// user, and language switcher.
func NewBase(w http.ResponseWriter, r *http.Request, deps module.Dependencies, area webtemplates.Area, titleKey string) webtemplates.Base {
	loc, lang := webi18n.Resolve(w, r, deps.Cookies)
	base := webtemplates.Base{
		Loc:       loc,
		Lang:      lang,
		TitleKey:  titleKey,
		Area:      area,
		User:      deps.Session(r).User,
		Languages: webi18n.Options(lang),
	}
	if r != nil && r.URL != nil {
		base.Path = r.URL.Path
		base.Query = r.URL.RawQuery
	}
	return base
}

// WriteModulePage writes a module page. HTMX requests receive the fragment
// alone; full requests get the layout and any pending flash toast.
func WriteModulePage(w http.ResponseWriter, r *http.Request, deps module.Dependencies, page ModulePage) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	fragment := page.Fragment
	if fragment == nil {
		fragment = emptyComponent{}
	}

	ctx := httpx.RequestContext(r)
	var buf bytes.Buffer
	if httpx.IsHTMXRequest(r) {
		if err := fragment.Render(ctx, &buf); err != nil {
			return err
		}
		return writeBuffer(w, statusCode, &buf)
	}

	base := page.Base
	base.Toast = resolveFlashToast(w, r, deps, base.Loc)
	if err := webtemplates.Layout(base).Render(templ.WithChildren(ctx, fragment), &buf); err != nil {
		return err
	}
	return writeBuffer(w, statusCode, &buf)
}

// WriteFragment writes a bare HTML fragment, used by live HTMX endpoints.
func WriteFragment(w http.ResponseWriter, r *http.Request, statusCode int, fragment templ.Component) error {
	if w == nil {
		return nil
	}
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	var buf bytes.Buffer
	if fragment != nil {
		if err := fragment.Render(httpx.RequestContext(r), &buf); err != nil {
			return err
		}
	}
	return writeBuffer(w, statusCode, &buf)
}

func writeBuffer(w http.ResponseWriter, statusCode int, buf *bytes.Buffer) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err := w.Write(buf.Bytes())
	return err
}

func resolveFlashToast(w http.ResponseWriter, r *http.Request, deps module.Dependencies, loc webi18n.Localizer) *webtemplates.Toast {
	if r == nil {
		return nil
	}
	notice, ok := flashnotice.ReadAndClear(w, r, deps.Cookies)
	if !ok {
		return nil
	}
	message := notice.Message
	if message == "" && loc != nil {
		message = strings.TrimSpace(loc.Sprintf(notice.Key))
	}
	if message == "" {
		message = notice.Key
	}
	return &webtemplates.Toast{Kind: string(notice.Kind), Message: message}
}
