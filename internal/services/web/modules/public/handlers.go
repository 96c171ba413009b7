package public

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/forms"
	module "github.com/avasar/portal/internal/services/web/module"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	"github.com/avasar/portal/internal/services/web/platform/weberror"
	"github.com/avasar/portal/internal/services/web/routepath"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

const rateLimitedKey = "web.rate_limited"

type handlers struct {
	service service
	deps    module.Dependencies
}

func newHandlers(s service, deps module.Dependencies) handlers {
	return handlers{service: s, deps: deps}
}

func (h handlers) base(w http.ResponseWriter, r *http.Request, titleKey string) webtemplates.Base {
	return pagerender.NewBase(w, r, h.deps, webtemplates.AreaPublic, titleKey)
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "public.home.title")
	h.writePage(w, r, base, http.StatusOK, "page.home", base)
}

func (h handlers) handleAbout(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "public.about.title")
	h.writePage(w, r, base, http.StatusOK, "page.about", base)
}

func (h handlers) handlePlan(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "public.plan.title")
	h.writePage(w, r, base, http.StatusOK, "page.plan", h.service.planView(base))
}

func (h handlers) handleRewards(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "public.rewards.title")
	h.writePage(w, r, base, http.StatusOK, "page.rewards", h.service.rewardsView(base))
}

func (h handlers) handleContact(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "public.contact.title")
	h.writePage(w, r, base, http.StatusOK, "page.contact", webtemplates.ContactView{Base: base})
}

func (h handlers) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, "public.contact.title")
	view := webtemplates.ContactView{Base: base}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, err)
		return
	}
	values := forms.FromForm(r.PostForm, forms.FieldName, forms.FieldEmail, forms.FieldMessage)
	view.Form = webtemplates.ContactForm{
		Name:    values[forms.FieldName],
		Email:   values[forms.FieldEmail],
		Message: values[forms.FieldMessage],
	}
	if !h.deps.Allow(r, "contact") {
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.contact", view)
		return
	}
	failures, err := h.service.submitContact(r.Context(), view.Form)
	switch {
	case len(failures) > 0:
		view.Errors = base.Localize(failures)
		h.writePage(w, r, base, http.StatusUnprocessableEntity, "page.contact", view)
	case err != nil:
		view.Error = webi18n.ErrorMessage(base.Loc, err, "public.contact.failed")
		h.writePage(w, r, base, http.StatusOK, "page.contact", view)
	default:
		view.Sent = true
		view.Form = webtemplates.ContactForm{}
		h.writePage(w, r, base, http.StatusOK, "page.contact", view)
	}
}

// handleUnknown sends every unmatched path home.
func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, base webtemplates.Base, status int, view string, data any) {
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:       base,
		StatusCode: status,
		Fragment:   webtemplates.View(view, data),
	}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps)
}
