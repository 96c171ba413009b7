package publicauth

import (
	"context"
	"strings"

	"github.com/avasar/portal/internal/services/web/forms"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

type service struct {
	gateway ResetGateway
}

func newService(gateway ResetGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) verify(ctx context.Context, email string, otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return apperrors.EK(apperrors.KindInvalidInput, "otp.code_required", "")
	}
	return s.gateway.VerifyOTP(ctx, email, otp)
}

// reset validates the new password pair and submits it. Field failures come
// back as catalog keys and skip the API call.
func (s service) reset(ctx context.Context, email string, values forms.Values) (map[string]string, error) {
	if failures := forms.Validate(forms.ResetRules, values); len(failures) > 0 {
		return failures, nil
	}
	return nil, s.gateway.ResetPassword(ctx, email, values[forms.FieldPassword])
}
