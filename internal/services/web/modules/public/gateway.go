package public

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// ContactGateway submits contact form messages.
type ContactGateway interface {
	SubmitContact(context.Context, api.ContactRequest) error
}

// NewAPIGateway returns the REST gateway, or the unavailable gateway when no
// client is configured.
func NewAPIGateway(client *api.Client) ContactGateway {
	if client == nil {
		return unavailableGateway{}
	}
	return client
}

type unavailableGateway struct{}

func (unavailableGateway) SubmitContact(context.Context, api.ContactRequest) error {
	return apperrors.E(apperrors.KindUnavailable, "")
}
