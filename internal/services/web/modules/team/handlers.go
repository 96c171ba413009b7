package team

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/forms"
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

// view loads the roster; a load failure is shown inline above the invite
// form, which stays usable.
func (h handlers) view(w http.ResponseWriter, r *http.Request) webtemplates.TeamView {
	base := pagerender.NewBase(w, r, h.deps, webtemplates.AreaUser, "user.team.title")
	view := webtemplates.TeamView{Base: base}
	summary, err := h.service.load(r.Context(), h.deps.Token(r))
	if err != nil {
		view.Error = webi18n.ErrorMessage(base.Loc, err, "user.team.load_failed")
	}
	view.Summary = summary
	return view
}

func (h handlers) handleTeam(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, http.StatusOK, h.view(w, r))
}

func (h handlers) handleInvite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WriteModuleError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"), h.deps)
		return
	}
	values := forms.FromForm(r.PostForm, forms.FieldName, forms.FieldEmail, forms.FieldPhone)
	invite := api.Invite{Name: values[forms.FieldName], Email: values[forms.FieldEmail], Phone: values[forms.FieldPhone]}
	if !h.deps.Allow(r, "invite") {
		view := h.view(w, r)
		view.Invite = invite
		view.InviteError = view.T("web.rate_limited")
		h.writePage(w, r, http.StatusTooManyRequests, view)
		return
	}
	failures, err := h.service.invite(r.Context(), h.deps.Token(r), invite)
	if len(failures) > 0 || err != nil {
		view := h.view(w, r)
		view.Invite = invite
		status := http.StatusOK
		if len(failures) > 0 {
			view.Errors = view.Localize(failures)
			status = http.StatusUnprocessableEntity
		} else {
			view.InviteError = webi18n.ErrorMessage(view.Loc, err, "user.team.invite_failed")
		}
		h.writePage(w, r, status, view)
		return
	}
	flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess("user.team.invite_sent"))
	httpx.WriteRedirect(w, r, routepath.UserTeam)
}

func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, status int, view webtemplates.TeamView) {
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:       view.Base,
		StatusCode: status,
		Fragment:   webtemplates.View("user.team", view),
	}); err != nil {
		weberror.WriteModuleError(w, r, err, h.deps)
	}
}
