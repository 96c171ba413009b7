// Package dashboard serves the member landing page.
package dashboard

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// Module provides the member dashboard.
type Module struct {
	gateway Gateway
	deps    module.Dependencies
}

// New returns the dashboard module backed by the REST API.
func New(deps module.Dependencies) Module {
	return NewWithGateway(NewAPIGateway(deps.API), deps)
}

// NewWithGateway returns the dashboard module with an explicit gateway.
func NewWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "dashboard" }

// Healthy reports whether the dashboard gateway is configured.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires dashboard routes under the user area root.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(newService(m.gateway), m.deps))
	return module.Mount{Prefix: routepath.UserPrefix, Handler: mux}, nil
}
