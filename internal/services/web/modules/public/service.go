package public

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/forms"
	"github.com/avasar/portal/internal/services/web/ranks"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

const (
	joiningFee   = 3600
	roiPrincipal = 100000
	roiMonthly   = 4000
	roiMonths    = 24
)

type service struct {
	gateway ContactGateway
}

func newService(gateway ContactGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func tieredLevels(first, second, rest float64) []webtemplates.PlanLevel {
	return []webtemplates.PlanLevel{
		{Levels: "1", Percent: first},
		{Levels: "2", Percent: second},
		{Levels: "3-10", Percent: rest},
	}
}

func (service) planView(base webtemplates.Base) webtemplates.PlanView {
	return webtemplates.PlanView{
		Base:       base,
		JoiningFee: joiningFee,
		Sections: []webtemplates.PlanSection{
			{TitleKey: "public.plan.team_title", NoteKey: "public.plan.team_note", Levels: tieredLevels(10, 3, 2)},
			{TitleKey: "public.plan.roi_commission_title", NoteKey: "public.plan.roi_commission_note", Levels: tieredLevels(10, 3, 2)},
			{TitleKey: "public.plan.investment_title", NoteKey: "public.plan.investment_note", Levels: tieredLevels(3, 2, 1)},
		},
		ROIPrincipal: roiPrincipal,
		ROIMonthly:   roiMonthly,
		ROIMonths:    roiMonths,
	}
}

func (service) rewardsView(base webtemplates.Base) webtemplates.RewardsView {
	return webtemplates.RewardsView{Base: base, MatchingBonus: ranks.MatchingBonus, Tiers: ranks.All()}
}

// submitContact validates form and forwards it. Field failures come back as
// catalog keys and skip the API call.
func (s service) submitContact(ctx context.Context, form webtemplates.ContactForm) (map[string]string, error) {
	values := forms.Values{
		forms.FieldName:    form.Name,
		forms.FieldEmail:   form.Email,
		forms.FieldMessage: form.Message,
	}
	if failures := forms.Validate(forms.ContactRules, values); len(failures) > 0 {
		return failures, nil
	}
	return nil, s.gateway.SubmitContact(ctx, api.ContactRequest{Name: form.Name, Email: form.Email, Message: form.Message})
}
