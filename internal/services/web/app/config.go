package app

import (
	"net/http"

	module "github.com/avasar/portal/internal/services/web/module"
)

// Config captures the composition inputs for the web root handler.
type Config struct {
	Dependencies  module.Dependencies
	PublicModules []module.Module
	UserModules   []module.Module
	AdminModules  []module.Module
	Checking      http.Handler
}
