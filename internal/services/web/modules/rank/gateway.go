package rank

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// Gateway loads rank standing.
type Gateway interface {
	Rank(ctx context.Context, token string) (api.RankSummary, error)
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

func (unavailableGateway) Rank(context.Context, string) (api.RankSummary, error) {
	return api.RankSummary{}, apperrors.E(apperrors.KindUnavailable, "")
}
