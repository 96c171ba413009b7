// Package public serves the marketing site: home, about, plan, rewards, and
// the contact form.
package public

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// Module provides public marketing routes.
type Module struct {
	gateway ContactGateway
	deps    module.Dependencies
}

// New returns a public module backed by the configured API client.
func New(deps module.Dependencies) Module {
	return NewWithGateway(NewAPIGateway(deps.API), deps)
}

// NewWithGateway returns a public module with an explicit contact gateway.
func NewWithGateway(gateway ContactGateway, deps module.Dependencies) Module {
	return Module{gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "public" }

// Healthy reports whether contact submissions can reach the backend.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires public route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(newService(m.gateway), m.deps))
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}
