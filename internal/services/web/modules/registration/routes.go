package registration

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/routepath"
)

func registerFormRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.Register, h.handleRegister)
	mux.HandleFunc(http.MethodGet+" "+routepath.RegisterPrefix+"{$}", h.handleRegister)
	mux.HandleFunc(http.MethodPost+" "+routepath.Register, h.handleRegisterSubmit)
	mux.HandleFunc(http.MethodPost+" "+routepath.RegisterValidate, h.handleValidate)
	mux.HandleFunc(http.MethodPost+" "+routepath.RegisterUsername, h.handleUsername)
	mux.HandleFunc(http.MethodPost+" "+routepath.RegisterSponsor, h.handleSponsor)
	mux.HandleFunc(http.MethodPost+" "+routepath.RegisterStrength, h.handleStrength)
	mux.HandleFunc(http.MethodGet+" "+routepath.RegisterPrefix+"{rest...}", h.handleUnknown)
}

func registerOTPRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.OTP, h.handleOTP)
	mux.HandleFunc(http.MethodGet+" "+routepath.OTPPrefix+"{$}", h.handleOTP)
	mux.HandleFunc(http.MethodPost+" "+routepath.OTPSend, h.handleOTPSend)
	mux.HandleFunc(http.MethodPost+" "+routepath.OTPResend, h.handleOTPResend)
	mux.HandleFunc(http.MethodGet+" "+routepath.OTPCooldown, h.handleOTPCooldown)
	mux.HandleFunc(http.MethodPost+" "+routepath.OTPVerify, h.handleOTPVerify)
	mux.HandleFunc(http.MethodPost+" "+routepath.OTPChangeEmail, h.handleOTPChangeEmail)
	mux.HandleFunc(http.MethodGet+" "+routepath.OTPPrefix+"{rest...}", h.handleUnknown)
}
