// Package registration serves account sign-up: the registration form, its
// live HTMX checks, and the email OTP step that creates the account.
package registration

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

type routeRegistrar func(*http.ServeMux, handlers)

// Module provides one registration surface mounted under its own prefix.
type Module struct {
	id       string
	prefix   string
	register routeRegistrar
	gateway  Gateway
	deps     module.Dependencies
}

// NewRegister returns the registration form module.
func NewRegister(deps module.Dependencies) Module {
	return NewRegisterWithGateway(NewAPIGateway(deps.API), deps)
}

// NewRegisterWithGateway returns the registration form module with an
// explicit backend gateway.
func NewRegisterWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{id: "registration.form", prefix: routepath.RegisterPrefix, register: registerFormRoutes, gateway: gateway, deps: deps}
}

// NewOTP returns the email verification module.
func NewOTP(deps module.Dependencies) Module {
	return NewOTPWithGateway(NewAPIGateway(deps.API), deps)
}

// NewOTPWithGateway returns the email verification module with an explicit
// backend gateway.
func NewOTPWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{id: "registration.otp", prefix: routepath.OTPPrefix, register: registerOTPRoutes, gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (m Module) ID() string { return m.id }

// Healthy reports whether the backend gateway is configured.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires the surface's route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	if m.register != nil {
		m.register(mux, newHandlers(newService(m.gateway), m.deps))
	}
	return module.Mount{Prefix: m.prefix, Handler: mux}, nil
}
