package team

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// Gateway loads the roster and sends invitations.
type Gateway interface {
	Team(ctx context.Context, token string) (api.TeamSummary, error)
	Invite(ctx context.Context, token string, invite api.Invite) error
}

// NewAPIGateway returns the REST gateway, or the unavailable gateway when no
// client is configured.
func NewAPIGateway(client *api.Client) Gateway {
	if client == nil {
		return unavailableGateway{}
	}
	return client
}

type unavailableGateway struct{}

func (unavailableGateway) Team(context.Context, string) (api.TeamSummary, error) {
	return api.TeamSummary{}, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) Invite(context.Context, string, api.Invite) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}
