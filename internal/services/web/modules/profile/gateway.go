package profile

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// Gateway reads and updates the signed-in member's profile.
type Gateway interface {
	Profile(ctx context.Context, token string) (api.User, error)
	UpdateProfile(ctx context.Context, token string, update api.ProfileUpdate) (api.User, error)
	UploadPhoto(ctx context.Context, token string, photo api.PhotoUpload) (api.PhotoResult, error)
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

func (unavailableGateway) Profile(context.Context, string) (api.User, error) {
	return api.User{}, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) UpdateProfile(context.Context, string, api.ProfileUpdate) (api.User, error) {
	return api.User{}, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) UploadPhoto(context.Context, string, api.PhotoUpload) (api.PhotoResult, error) {
	return api.PhotoResult{}, apperrors.E(apperrors.KindUnavailable, "")
}
