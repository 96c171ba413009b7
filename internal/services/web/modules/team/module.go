// Package team serves the downline roster and member invitations.
package team

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// Module provides team routes.
type Module struct {
	gateway Gateway
	deps    module.Dependencies
}

// New returns the team module backed by the REST API.
func New(deps module.Dependencies) Module {
	return NewWithGateway(NewAPIGateway(deps.API), deps)
}

// NewWithGateway returns the team module with an explicit gateway.
func NewWithGateway(gateway Gateway, deps module.Dependencies) Module {
	return Module{gateway: gateway, deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "team" }

// Healthy reports whether the team gateway is configured.
func (m Module) Healthy() bool {
	_, unavailable := m.gateway.(unavailableGateway)
	return m.gateway != nil && !unavailable
}

// Mount wires team routes.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.gateway), m.deps)
	mux.HandleFunc(http.MethodGet+" "+routepath.UserTeam, h.handleTeam)
	mux.HandleFunc(http.MethodGet+" "+routepath.TeamPrefix+"{$}", h.handleTeam)
	mux.HandleFunc(http.MethodPost+" "+routepath.UserTeamInvite, h.handleInvite)
	mux.HandleFunc(http.MethodGet+" "+routepath.TeamPrefix+"{rest...}", h.handleUnknown)
	return module.Mount{Prefix: routepath.TeamPrefix, Handler: mux}, nil
}
