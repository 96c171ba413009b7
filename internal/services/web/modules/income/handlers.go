package income

import (
	"net/http"
	"strings"

	module "github.com/avasar/portal/internal/services/web/module"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	"github.com/avasar/portal/internal/services/web/platform/weberror"
	"github.com/avasar/portal/internal/services/web/routepath"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

// Periods accepted by the income filter, in tab order.
var periods = []string{"all", "month", "week"}

// normalizePeriod maps unknown filters to "all".
func normalizePeriod(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, period := range periods {
		if raw == period {
			return period
		}
	}
	return "all"
}

type handlers struct {
	gateway Gateway
	deps    module.Dependencies
}

func (h handlers) handleIncome(w http.ResponseWriter, r *http.Request) {
	base := pagerender.NewBase(w, r, h.deps, webtemplates.AreaUser, "user.income.title")
	period := normalizePeriod(r.URL.Query().Get(routepath.IncomePeriodQuery))
	view := webtemplates.IncomeView{Base: base}
	for _, option := range periods {
		view.Periods = append(view.Periods, webtemplates.PeriodOption{
			LabelKey: "user.income.period_" + option,
			Href:     routepath.UserIncomeWithPeriod(option),
			Active:   option == period,
		})
	}
	summary, err := h.gateway.Income(r.Context(), h.deps.Token(r), period)
	if err != nil {
		view.Error = webi18n.ErrorMessage(base.Loc, err, "user.income.load_failed")
	}
	view.Income = summary
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:     base,
		Fragment: webtemplates.View("user.income", view),
	}); err != nil {
		weberror.WriteModuleError(w, r, err, h.deps)
	}
}

func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}
