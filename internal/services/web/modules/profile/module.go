// Package profile serves the member profile page and photo upload.
package profile

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// Module provides profile routes.
type Module struct {
	gateway Gateway
	deps    module.Dependencies
}

// New returns the profile module backed by the REST API.
func New(deps module.Dependencies) Module {
	return NewWithGateway(NewAPIGateway(deps.API), deps)
}

// NewWithGateway returns the profile module with an explicit gateway.
func NewWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "profile" }

// Healthy reports whether the profile gateway is configured.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires profile routes.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(newService(m.gateway), m.deps))
	return module.Mount{Prefix: routepath.ProfilePrefix, Handler: mux}, nil
}
