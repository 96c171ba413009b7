// Package weberror renders shared app-shell error responses for web modules.
package weberror

import (
	"log"
	"net/http"
	"strings"

	module "github.com/avasar/portal/internal/services/web/module"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

// ShouldRenderAppError reports whether status should use app error-page UX.
func ShouldRenderAppError(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// PublicMessage resolves a user-safe localized error message. Backend text is
// never echoed here; inline form errors use webi18n.ErrorMessage instead.
func PublicMessage(loc webi18n.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if loc != nil {
		if key := apperrors.LocalizationKey(err); key != "" {
			if localized := strings.TrimSpace(loc.Sprintf(key)); localized != "" && localized != key {
				return localized
			}
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	if text := strings.TrimSpace(http.StatusText(statusCode)); text != "" {
		return text
	}
	return http.StatusText(http.StatusInternalServerError)
}

// WriteAppError writes a localized app-shell error response for full-page and HTMX requests.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int, deps module.Dependencies) {
	if w == nil {
		return
	}
	if !ShouldRenderAppError(statusCode) {
		statusCode = http.StatusInternalServerError
	}
	area := webtemplates.AreaPublic
	if user := deps.Session(r).User; user != nil {
		area = webtemplates.AreaUser
		if user.IsAdmin() {
			area = webtemplates.AreaAdmin
		}
	}
	base := pagerender.NewBase(w, r, deps, area, webtemplates.AppErrorPageTitleKey(statusCode))
	view := webtemplates.ErrorView{Base: base, Status: statusCode}
	err := pagerender.WriteModulePage(w, r, deps, pagerender.ModulePage{
		Base:       base,
		StatusCode: statusCode,
		Fragment:   webtemplates.View("page.error", view),
	})
	if err != nil {
		log.Printf("render app error page status=%d: %v", statusCode, err)
		http.Error(w, http.StatusText(statusCode), statusCode)
	}
}

// WriteModuleError writes a module-safe localized error response.
func WriteModuleError(w http.ResponseWriter, r *http.Request, err error, deps module.Dependencies) {
	if w == nil {
		return
	}
	statusCode := apperrors.HTTPStatus(err)
	if ShouldRenderAppError(statusCode) {
		WriteAppError(w, r, statusCode, deps)
		return
	}
	loc, _ := webi18n.Resolve(w, r, deps.Cookies)
	http.Error(w, PublicMessage(loc, err), statusCode)
}
