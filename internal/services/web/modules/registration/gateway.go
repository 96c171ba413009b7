package registration

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// Gateway is the backend surface registration needs beyond account creation,
// which goes through the session manager.
type Gateway interface {
	CheckUsername(ctx context.Context, username string) (bool, error)
	LookupSponsor(ctx context.Context, code string) (api.Sponsor, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email string, otp string) error
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

func (unavailableGateway) CheckUsername(context.Context, string) (bool, error) {
	return false, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) LookupSponsor(context.Context, string) (api.Sponsor, error) {
	return api.Sponsor{}, apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) SendOTP(context.Context, string) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) VerifyOTP(context.Context, string, string) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}
