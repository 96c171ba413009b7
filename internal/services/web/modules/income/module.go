// Package income serves the member earnings page.
package income

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// Module provides income routes.
type Module struct {
	gateway Gateway
	deps    module.Dependencies
}

// New returns the income module backed by the REST API.
func New(deps module.Dependencies) Module {
	return NewWithGateway(NewAPIGateway(deps.API), deps)
}

// NewWithGateway returns the income module with an explicit gateway.
func NewWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "income" }

// Healthy reports whether the income gateway is configured.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires income routes.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := handlers{gateway: m.gateway, deps: m.deps}
	if h.gateway == nil {
		h.gateway = unavailableGateway{}
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.UserIncome, h.handleIncome)
	mux.HandleFunc(http.MethodGet+" "+routepath.IncomePrefix+"{$}", h.handleIncome)
	mux.HandleFunc(http.MethodGet+" "+routepath.IncomePrefix+"{rest...}", h.handleUnknown)
	return module.Mount{Prefix: routepath.IncomePrefix, Handler: mux}, nil
}
