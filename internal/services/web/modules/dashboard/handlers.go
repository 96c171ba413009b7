package dashboard

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
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

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.UserDashboard, http.StatusFound)
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	base := pagerender.NewBase(w, r, h.deps, webtemplates.AreaUser, "user.dashboard.title")
	view := webtemplates.DashboardView{Base: base}
	if base.User != nil && base.User.ReferralCode != "" {
		view.ReferralLink = h.referralLink(r, base.User.ReferralCode)
	}
	loaded, err := h.service.load(r.Context(), h.deps.Token(r))
	view.Income = loaded.income
	view.Team = loaded.team
	if err != nil {
		view.Error = webi18n.ErrorMessage(base.Loc, err, "user.dashboard.load_failed")
	}
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:     base,
		Fragment: webtemplates.View("user.dashboard", view),
	}); err != nil {
		weberror.WriteModuleError(w, r, err, h.deps)
	}
}

// referralLink is the absolute sign-up URL carrying the member's code.
func (h handlers) referralLink(r *http.Request, code string) string {
	scheme := "http"
	if h.deps.RequestMeta.IsHTTPS(r) {
		scheme = "https"
	}
	return scheme + "://" + r.Host + routepath.RegisterWithRef(code)
}

func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}
