package admin

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminRoot, h.handleIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminPrefix+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminDashboard, h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminUsers, h.handleUsers)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminUserStatusPattern, h.handleUserStatus)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminContacts, h.handleContacts)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminContactStatusPattern, h.handleContactStatus)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminPrefix+"{rest...}", h.handleUnknown)
}
