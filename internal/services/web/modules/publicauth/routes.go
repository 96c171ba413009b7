package publicauth

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/platform/httpx"
	"github.com/avasar/portal/internal/services/web/routepath"
)

func registerLoginRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLogin)
	mux.HandleFunc(http.MethodGet+" "+routepath.LoginPrefix+"{$}", h.handleLogin)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLoginSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.LoginPrefix+"{rest...}", h.handleUnknown)
}

func registerLogoutRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(http.MethodGet+" "+routepath.Logout, httpx.MethodNotAllowed(http.MethodPost))
}

func registerForgotRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.Forgot, h.handleForgot)
	mux.HandleFunc(http.MethodGet+" "+routepath.ForgotPrefix+"{$}", h.handleForgot)
	mux.HandleFunc(http.MethodPost+" "+routepath.Forgot, h.handleForgotRequest)
	mux.HandleFunc(http.MethodPost+" "+routepath.ForgotResend, h.handleForgotResend)
	mux.HandleFunc(http.MethodGet+" "+routepath.ForgotCooldown, h.handleForgotCooldown)
	mux.HandleFunc(http.MethodPost+" "+routepath.ForgotVerify, h.handleForgotVerify)
	mux.HandleFunc(http.MethodPost+" "+routepath.ForgotReset, h.handleForgotReset)
	mux.HandleFunc(http.MethodPost+" "+routepath.ForgotRestart, h.handleForgotRestart)
	mux.HandleFunc(http.MethodGet+" "+routepath.ForgotPrefix+"{rest...}", h.handleUnknown)
}
