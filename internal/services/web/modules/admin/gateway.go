package admin

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// Gateway is the admin API surface.
type Gateway interface {
	AdminStats(ctx context.Context, token string) (api.AdminStats, error)
	AdminUsers(ctx context.Context, token string, filter api.UserFilter) ([]api.User, error)
	SetUserStatus(ctx context.Context, token string, userID string, status string) error
	AdminContacts(ctx context.Context, token string, status string) ([]api.ContactMessage, error)
	SetContactStatus(ctx context.Context, token string, contactID string, status string) error
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

func (unavailableGateway) AdminStats(context.Context, string) (api.AdminStats, error) {
	return api.AdminStats{}, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) AdminUsers(context.Context, string, api.UserFilter) ([]api.User, error) {
	return nil, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) SetUserStatus(context.Context, string, string, string) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) AdminContacts(context.Context, string, string) ([]api.ContactMessage, error) {
	return nil, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) SetContactStatus(context.Context, string, string, string) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}
