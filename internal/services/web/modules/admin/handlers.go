package admin

import (
	"net/http"
	"strings"

	"github.com/avasar/portal/internal/services/web/api"
	module "github.com/avasar/portal/internal/services/web/module"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/flash"
	"github.com/avasar/portal/internal/services/web/platform/httpx"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	"github.com/avasar/portal/internal/services/web/platform/weberror"
	"github.com/avasar/portal/internal/services/web/routepath"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

type handlers struct {
	service service
	deps    module.Dependencies
}

func newHandlers(s service, deps module.Dependencies) handlers {
	return handlers{service: s, deps: deps}
}

func (h handlers) base(w http.ResponseWriter, r *http.Request, titleKey string) webtemplates.Base {
	return pagerender.NewBase(w, r, h.deps, webtemplates.AreaAdmin, titleKey)
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.AdminDashboard, http.StatusFound)
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "admin.dashboard.title")
	view := webtemplates.AdminDashboardView{Base: base}
	stats, err := h.service.stats(r.Context(), h.deps.Token(r))
	if err != nil {
		view.Error = webi18n.ErrorMessage(base.Loc, err, "admin.load_failed")
	}
	view.Stats = stats
	h.writePage(w, r, base, "admin.dashboard", view)
}

func (h handlers) handleUsers(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "admin.users.title")
	query := r.URL.Query()
	filter := api.UserFilter{
		Search: strings.TrimSpace(query.Get("search")),
		Status: normalizeStatus(query.Get("status"), userStatuses),
	}
	view := webtemplates.AdminUsersView{
		Base:          base,
		Search:        filter.Search,
		Statuses:      filterOptions(userStatuses, filter.Status),
		StatusChoices: statusChoices(userStatuses),
	}
	users, err := h.service.users(r.Context(), h.deps.Token(r), filter)
	if err != nil {
		view.Error = webi18n.ErrorMessage(base.Loc, err, "admin.load_failed")
	}
	view.Users = users
	h.writePage(w, r, base, "admin.users", view)
}

func (h handlers) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WriteModuleError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"), h.deps)
		return
	}
	err := h.service.setUserStatus(r.Context(), h.deps.Token(r), r.PathValue("userID"), r.PostForm.Get("status"))
	h.afterUpdate(w, r, err, "admin.users.updated", routepath.AdminUsers)
}

func (h handlers) handleContacts(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "admin.contacts.title")
	status := normalizeStatus(r.URL.Query().Get("status"), contactStatuses)
	view := webtemplates.AdminContactsView{
		Base:          base,
		Statuses:      filterOptions(contactStatuses, status),
		StatusChoices: statusChoices(contactStatuses),
	}
	contacts, err := h.service.contacts(r.Context(), h.deps.Token(r), status)
	if err != nil {
		view.Error = webi18n.ErrorMessage(base.Loc, err, "admin.load_failed")
	}
	view.Contacts = contacts
	h.writePage(w, r, base, "admin.contacts", view)
}

func (h handlers) handleContactStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WriteModuleError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"), h.deps)
		return
	}
	err := h.service.setContactStatus(r.Context(), h.deps.Token(r), r.PathValue("contactID"), r.PostForm.Get("status"))
	h.afterUpdate(w, r, err, "admin.contacts.updated", routepath.AdminContacts)
}

// afterUpdate flashes the outcome of a status change and returns to the list.
func (h handlers) afterUpdate(w http.ResponseWriter, r *http.Request, err error, successKey string, list string) {
	notice := flash.NoticeSuccess(successKey)
	if err != nil {
		notice = flash.Notice{Kind: flash.KindError, Message: apperrors.Message(err), Key: apperrors.LocalizationKey(err)}
		if notice.Key == "" {
			notice.Key = "admin.update_failed"
		}
	}
	flash.Write(w, r, h.deps.Cookies, notice)
	httpx.WriteRedirect(w, r, list)
}

func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, base webtemplates.Base, view string, data any) {
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:     base,
		Fragment: webtemplates.View(view, data),
	}); err != nil {
		weberror.WriteModuleError(w, r, err, h.deps)
	}
}
