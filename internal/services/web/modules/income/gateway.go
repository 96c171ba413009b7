package income

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// Gateway loads earnings for a period.
type Gateway interface {
	Income(ctx context.Context, token string, period string) (api.IncomeSummary, error)
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

func (unavailableGateway) Income(context.Context, string, string) (api.IncomeSummary, error) {
	return api.IncomeSummary{}, apperrors.E(apperrors.KindUnavailable, "")
}
