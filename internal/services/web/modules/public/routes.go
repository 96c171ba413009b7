package public

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleHome)
	mux.HandleFunc(http.MethodGet+" "+routepath.About, h.handleAbout)
	mux.HandleFunc(http.MethodGet+" "+routepath.Plan, h.handlePlan)
	mux.HandleFunc(http.MethodGet+" "+routepath.Rewards, h.handleRewards)
	mux.HandleFunc(http.MethodGet+" "+routepath.Contact, h.handleContact)
	mux.HandleFunc(http.MethodPost+" "+routepath.Contact, h.handleContactSubmit)
	mux.HandleFunc(http.MethodGet+" /{rest...}", h.handleUnknown)
}
