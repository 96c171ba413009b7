package publicauth

import (
	"context"
	"sync"

	"github.com/avasar/portal/internal/services/web/api"
)

type fakeAuthGateway struct {
	user     api.User
	token    string
	loginErr error
}

func (f fakeAuthGateway) Login(_ context.Context, _ api.Credentials) (api.AuthResponse, error) {
	if f.loginErr != nil {
		return api.AuthResponse{}, f.loginErr
	}
	return api.AuthResponse{Token: f.token, User: f.user}, nil
}

func (f fakeAuthGateway) Register(context.Context, api.RegisterRequest) (api.AuthResponse, error) {
	return api.AuthResponse{}, nil
}

func (f fakeAuthGateway) Profile(context.Context, string) (api.User, error) {
	return f.user, nil
}

type fakeResetGateway struct {
	mu        sync.Mutex
	sent      []string
	verifyErr error
	resetErr  error
	resets    map[string]string
}

func (f *fakeResetGateway) SendOTP(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeResetGateway) VerifyOTP(context.Context, string, string) error {
	return f.verifyErr
}

func (f *fakeResetGateway) ResetPassword(_ context.Context, email string, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	if f.resets == nil {
		f.resets = map[string]string{}
	}
	f.resets[email] = password
	return nil
}

func (f *fakeResetGateway) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
