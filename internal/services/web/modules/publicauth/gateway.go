package publicauth

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// ResetGateway issues and checks reset OTPs and sets the new password.
type ResetGateway interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email string, otp string) error
	ResetPassword(ctx context.Context, email string, newPassword string) error
}

// NewAPIGateway returns the REST gateway, or the unavailable gateway when no
// client is configured.
func NewAPIGateway(client *api.Client) ResetGateway {
	if client == nil {
		return unavailableGateway{}
	}
	return client
}

type unavailableGateway struct{}

func (unavailableGateway) SendOTP(context.Context, string) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) VerifyOTP(context.Context, string, string) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}

func (unavailableGateway) ResetPassword(context.Context, string, string) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}
