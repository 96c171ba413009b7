// Package rank serves rank standing and next-rank progress.
package rank

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// Module provides rank routes.
type Module struct {
	gateway Gateway
	deps    module.Dependencies
}

// New returns the rank module backed by the REST API.
func New(deps module.Dependencies) Module {
	return NewWithGateway(NewAPIGateway(deps.API), deps)
}

// NewWithGateway returns the rank module with an explicit gateway.
func NewWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "rank" }

// Healthy reports whether the rank gateway is configured.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires rank routes.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := handlers{gateway: m.gateway, deps: m.deps}
	if h.gateway == nil {
		h.gateway = unavailableGateway{}
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.UserRank, h.handleRank)
	mux.HandleFunc(http.MethodGet+" "+routepath.RankPrefix+"{$}", h.handleRank)
	mux.HandleFunc(http.MethodGet+" "+routepath.RankPrefix+"{rest...}", h.handleUnknown)
	return module.Mount{Prefix: routepath.RankPrefix, Handler: mux}, nil
}
