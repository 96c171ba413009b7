package public

import (
	"context"

	"github.com/avasar/portal/internal/services/web/api"
)

type fakeGateway struct {
	err   error
	calls []api.ContactRequest
}

func (f *fakeGateway) SubmitContact(_ context.Context, req api.ContactRequest) error {
	f.calls = append(f.calls, req)
	return f.err
}
