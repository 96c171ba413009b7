package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/avasar/portal/internal/services/web/api"
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

type summary struct {
	income api.IncomeSummary
	team   api.TeamSummary
}

// load fetches income and team in parallel. Whatever loaded is returned
// alongside the first error.
func (s service) load(ctx context.Context, token string) (summary, error) {
	var out summary
	var g errgroup.Group
	g.Go(func() error {
		income, err := s.gateway.Income(ctx, token, "")
		if err == nil {
			out.income = income
		}
		return err
	})
	g.Go(func() error {
		team, err := s.gateway.Team(ctx, token)
		if err == nil {
			out.team = team
		}
		return err
	})
	return out, g.Wait()
}
