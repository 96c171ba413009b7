package app

import (
	"net/http"
)

// BuildRootHandler composes a root mux using the configured module groups.
func BuildRootHandler(cfg Config) (http.Handler, error) {
	deps := cfg.Dependencies
	return Compose(ComposeInput{
		PublicModules:  cfg.PublicModules,
		UserModules:    cfg.UserModules,
		AdminModules:   cfg.AdminModules,
		ResolveSession: deps.Session,
		Cookies:        deps.Cookies,
		Checking:       cfg.Checking,
		RequestMeta:    deps.RequestMeta,
	})
}
