package registration

import (
	"context"
	"sync"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

type fakeGateway struct {
	mu        sync.Mutex
	taken     map[string]bool
	sponsors  map[string]api.Sponsor
	sent      []string
	checks    []string
	sendErr   error
	verifyErr error
}

func (f *fakeGateway) CheckUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, username)
	return !f.taken[username], nil
}

func (f *fakeGateway) LookupSponsor(_ context.Context, code string) (api.Sponsor, error) {
	sponsor, ok := f.sponsors[code]
	if !ok {
		return api.Sponsor{}, apperrors.E(apperrors.KindNotFound, "Sponsor not found")
	}
	return sponsor, nil
}

func (f *fakeGateway) SendOTP(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeGateway) VerifyOTP(context.Context, string, string) error {
	return f.verifyErr
}

func (f *fakeGateway) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeAuthGateway struct {
	mu          sync.Mutex
	registered  []api.RegisterRequest
	registerErr error
}

func (f *fakeAuthGateway) Login(context.Context, api.Credentials) (api.AuthResponse, error) {
	return api.AuthResponse{}, apperrors.E(apperrors.KindUnauthorized, "")
}

func (f *fakeAuthGateway) Register(_ context.Context, req api.RegisterRequest) (api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return api.AuthResponse{}, f.registerErr
	}
	f.registered = append(f.registered, req)
	return api.AuthResponse{
		Token: "tok-" + req.Username,
		User:  api.User{ID: "u-" + req.Username, Username: req.Username, Email: req.Email, Role: "user"},
	}, nil
}

func (f *fakeAuthGateway) Profile(context.Context, string) (api.User, error) {
	return api.User{}, apperrors.E(apperrors.KindUnauthorized, "")
}

func (f *fakeAuthGateway) registrations() []api.RegisterRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.RegisterRequest(nil), f.registered...)
}
