// Package admin serves the administrator area: platform stats, the user
// directory, and contact form submissions.
package admin

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// Module provides admin routes.
type Module struct {
	gateway Gateway
	deps    module.Dependencies
}

// New returns the admin module backed by the REST API.
func New(deps module.Dependencies) Module {
	return NewWithGateway(NewAPIGateway(deps.API), deps)
}

// NewWithGateway returns the admin module with an explicit gateway.
func NewWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "admin" }

// Healthy reports whether the admin gateway is configured.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires admin routes.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(newService(m.gateway), m.deps))
	return module.Mount{Prefix: routepath.AdminPrefix, Handler: mux}, nil
}
