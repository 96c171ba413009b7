package team

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/forms"
)

type service struct {
	gateway Gateway
}

func newService(gateway Gateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) load(ctx context.Context, token string) (api.TeamSummary, error) {
	summary, err := s.gateway.Team(ctx, token)
	if err != nil {
		return api.TeamSummary{}, err
	}
	if summary.TotalTeam == 0 {
		summary.TotalTeam = len(summary.Team)
	}
	if summary.TeamStats.TotalMembers == 0 {
		summary.TeamStats.TotalMembers = summary.TotalTeam
	}
	return summary, nil
}

// invite validates and sends one invitation. Field failures skip the API.
func (s service) invite(ctx context.Context, token string, invite api.Invite) (map[string]string, error) {
	values := forms.Values{
		forms.FieldName:  invite.Name,
		forms.FieldEmail: invite.Email,
		forms.FieldPhone: invite.Phone,
	}
	if failures := forms.Validate(forms.InviteRules, values); len(failures) > 0 {
		return failures, nil
	}
	return nil, s.gateway.Invite(ctx, token, invite)
}
