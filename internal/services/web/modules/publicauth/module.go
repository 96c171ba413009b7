// Package publicauth serves sign-in, sign-out, and password reset.
package publicauth

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

type routeRegistrar func(*http.ServeMux, handlers)

// Module provides one public auth surface mounted under its own prefix.
type Module struct {
	id       string
	prefix   string
	register routeRegistrar
	gateway  ResetGateway
	deps     module.Dependencies
}

// NewLogin returns the sign-in module.
func NewLogin(deps module.Dependencies) Module {
	return newPublicModule("publicauth.login", routepath.LoginPrefix, registerLoginRoutes, NewAPIGateway(deps.API), deps)
}

// NewLogout returns the sign-out module.
func NewLogout(deps module.Dependencies) Module {
	return newPublicModule("publicauth.logout", routepath.LogoutPrefix, registerLogoutRoutes, NewAPIGateway(deps.API), deps)
}

// NewForgotPassword returns the password reset module.
func NewForgotPassword(deps module.Dependencies) Module {
	return NewForgotPasswordWithGateway(NewAPIGateway(deps.API), deps)
}

// NewForgotPasswordWithGateway returns the password reset module with an
// explicit backend gateway.
func NewForgotPasswordWithGateway(gateway ResetGateway, deps module.Dependencies) Module {
	return newPublicModule("publicauth.forgot", routepath.ForgotPrefix, registerForgotRoutes, gateway, deps)
}

func newPublicModule(id string, prefix string, register routeRegistrar, gateway ResetGateway, deps module.Dependencies) Module {
	return Module{id: id, prefix: prefix, register: register, gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (m Module) ID() string { return m.id }

// Mount wires the surface's route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	if m.register != nil {
		m.register(mux, newHandlers(newService(m.gateway), m.deps))
	}
	return module.Mount{Prefix: m.prefix, Handler: mux}, nil
}
