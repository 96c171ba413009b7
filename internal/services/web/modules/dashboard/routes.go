package dashboard

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.UserRoot, h.handleIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.UserPrefix+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.UserDashboard, h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.UserPrefix+"{rest...}", h.handleUnknown)
}
