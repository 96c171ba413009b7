package profile

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.UserProfile, h.handleProfile)
	mux.HandleFunc(http.MethodGet+" "+routepath.ProfilePrefix+"{$}", h.handleProfile)
	mux.HandleFunc(http.MethodPost+" "+routepath.UserProfile, h.handleUpdate)
	mux.HandleFunc(http.MethodPost+" "+routepath.UserPhoto, h.handlePhoto)
	mux.HandleFunc(http.MethodGet+" "+routepath.ProfilePrefix+"{rest...}", h.handleUnknown)
}
