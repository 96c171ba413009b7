package rank

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/api"
	module "github.com/avasar/portal/internal/services/web/module"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	"github.com/avasar/portal/internal/services/web/platform/weberror"
	"github.com/avasar/portal/internal/services/web/ranks"
	"github.com/avasar/portal/internal/services/web/routepath"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

type handlers struct {
	gateway Gateway
	deps    module.Dependencies
}

// standing fills the rank view from the backend summary and the static
// ladder. The backend's next rank wins; otherwise the ladder supplies it.
func standing(view *webtemplates.RankView, summary api.RankSummary) {
	view.CurrentName = summary.CurrentRank
	if tier, ok := ranks.Lookup(summary.CurrentRank); ok {
		view.Current = &tier
		view.CurrentName = tier.Name
	}
	var required map[string]float64
	switch {
	case summary.NextRank != nil && summary.NextRank.Name != "":
		view.NextName = summary.NextRank.Name
		required = summary.NextRank.Requirements
	default:
		if next, ok := ranks.Next(summary.CurrentRank); ok {
			view.NextName = next.Name
		}
	}
	view.Requirements = ranks.RequirementProgress(required, summary.Achievements)
	view.Progress = ranks.Overall(summary.Progress, view.Requirements)
	view.Band = ranks.Band(view.Progress)
}

func (h handlers) handleRank(w http.ResponseWriter, r *http.Request) {
	base := pagerender.NewBase(w, r, h.deps, webtemplates.AreaUser, "user.rank.title")
	view := webtemplates.RankView{Base: base, Tiers: ranks.All()}
	summary, err := h.gateway.Rank(r.Context(), h.deps.Token(r))
	if err != nil {
		view.Error = webi18n.ErrorMessage(base.Loc, err, "user.rank.load_failed")
		if base.User != nil {
			summary.CurrentRank = base.User.Rank
		}
	}
	standing(&view, summary)
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:     base,
		Fragment: webtemplates.View("user.rank", view),
	}); err != nil {
		weberror.WriteModuleError(w, r, err, h.deps)
	}
}

func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}
