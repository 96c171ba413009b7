package publicauth

import (
	"errors"
	"net/http"

	"github.com/avasar/portal/internal/services/web/forms"
	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/otpflow"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/flash"
	"github.com/avasar/portal/internal/services/web/platform/httpx"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	"github.com/avasar/portal/internal/services/web/platform/weberror"
	"github.com/avasar/portal/internal/services/web/routepath"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

const (
	rateLimitedKey   = "web.rate_limited"
	loginTitleKey    = "auth.login.title"
	forgotTitleKey   = "auth.forgot.title"
	otpSentKey       = "otp.notice.sent"
	otpCooldownKey   = "otp.notice.cooldown"
	otpVerifiedKey   = "otp.notice.verified"
	otpFailedKey     = "otp.verify_failed"
	otpSendFailedKey = "otp.send_failed"
	resetFailedKey   = "auth.forgot.failed"
	resetDoneKey     = "auth.forgot.success"
	loggedOutKey     = "auth.logout.done"
)

type handlers struct {
	service service
	deps    module.Dependencies
}

func newHandlers(s service, deps module.Dependencies) handlers {
	return handlers{service: s, deps: deps}
}

func (h handlers) base(w http.ResponseWriter, r *http.Request, titleKey string) webtemplates.Base {
	return pagerender.NewBase(w, r, h.deps, webtemplates.AreaPublic, titleKey)
}

func (h handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, loginTitleKey)
	h.writePage(w, r, base, http.StatusOK, "page.login", webtemplates.LoginView{Base: base})
}

func (h handlers) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"))
		return
	}
	base := h.base(w, r, loginTitleKey)
	values := forms.FromForm(r.PostForm, forms.FieldEmail, forms.FieldPassword)
	view := webtemplates.LoginView{Base: base, Email: values[forms.FieldEmail]}
	if failures := forms.Validate(forms.LoginRules, values); len(failures) > 0 {
		view.Errors = base.Localize(failures)
		h.writePage(w, r, base, http.StatusUnprocessableEntity, "page.login", view)
		return
	}
	if !h.deps.Allow(r, "login") {
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.login", view)
		return
	}
	result := h.deps.Sessions.Login(r.Context(), values[forms.FieldEmail], values[forms.FieldPassword])
	if !result.Success {
		view.Error = result.Message
		if view.Error == "" {
			view.Error = base.T(result.Key)
		}
		h.writePage(w, r, base, http.StatusUnauthorized, "page.login", view)
		return
	}
	h.deps.Cookies.WriteSession(w, r, result.Token)
	httpx.WriteRedirect(w, r, routepath.Home(result.Session.User.IsAdmin()))
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.deps.Token(r); token != "" {
		h.deps.Sessions.Logout(token)
	}
	h.deps.Cookies.ClearSession(w, r)
	flash.Write(w, r, h.deps.Cookies, flash.Notice{Kind: flash.KindInfo, Key: loggedOutKey})
	httpx.WriteRedirect(w, r, routepath.Login)
}

// forgotView builds the reset page for the current OTP state.
func (h handlers) forgotView(base webtemplates.Base, state otpflow.State) webtemplates.ForgotView {
	view := webtemplates.ForgotView{Base: base, Step: string(state.Step), Email: state.Email}
	if view.Step == "" {
		view.Step = string(otpflow.StepRequest)
	}
	if h.deps.OTP != nil {
		view.Cooldown = webtemplates.CooldownView{
			Base:       base,
			Seconds:    state.CooldownSeconds(h.deps.OTP.Now()),
			PollPath:   routepath.ForgotCooldown,
			ResendPath: routepath.ForgotResend,
		}
	}
	return view
}

// readReset returns the reset flow state, or a fresh request step.
func (h handlers) readReset(r *http.Request) otpflow.State {
	if h.deps.OTP == nil {
		return otpflow.State{Step: otpflow.StepRequest, Purpose: otpflow.PurposeReset}
	}
	state, ok := h.deps.OTP.Read(r, otpflow.PurposeReset)
	if !ok {
		return otpflow.State{Step: otpflow.StepRequest, Purpose: otpflow.PurposeReset}
	}
	return state
}

func (h handlers) handleForgot(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, forgotTitleKey)
	h.writePage(w, r, base, http.StatusOK, "page.forgot", h.forgotView(base, h.readReset(r)))
}

func (h handlers) handleForgotRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"))
		return
	}
	base := h.base(w, r, forgotTitleKey)
	values := forms.FromForm(r.PostForm, forms.FieldEmail)
	email := values[forms.FieldEmail]
	state := h.readReset(r)
	if !state.SentTo(email) {
		state = otpflow.State{Email: email, Step: otpflow.StepRequest, Purpose: otpflow.PurposeReset}
	}
	if failures := forms.Validate(forms.EmailRules, values); len(failures) > 0 {
		view := h.forgotView(base, otpflow.State{Email: email, Step: otpflow.StepRequest})
		view.Errors = base.Localize(failures)
		h.writePage(w, r, base, http.StatusUnprocessableEntity, "page.forgot", view)
		return
	}
	if !h.deps.Allow(r, "otp") {
		view := h.forgotView(base, otpflow.State{Email: email, Step: otpflow.StepRequest})
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.forgot", view)
		return
	}
	h.send(w, r, base, state)
}

func (h handlers) handleForgotResend(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	base := h.base(w, r, forgotTitleKey)
	state := h.readReset(r)
	if state.Step != otpflow.StepVerify || state.Email == "" {
		httpx.WriteRedirect(w, r, routepath.Forgot)
		return
	}
	if !h.deps.Allow(r, "otp") {
		view := h.forgotView(base, state)
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.forgot", view)
		return
	}
	h.send(w, r, base, state)
}

// send issues a reset OTP and moves to the verify step. An active cooldown
// keeps the previous code and only advances the step.
func (h handlers) send(w http.ResponseWriter, r *http.Request, base webtemplates.Base, state otpflow.State) {
	next, err := h.deps.OTP.Send(r.Context(), h.service.gateway, state)
	switch {
	case errors.Is(err, otpflow.ErrCooldown):
		next.Step = otpflow.StepVerify
		if writeErr := h.deps.OTP.Write(w, r, next); writeErr != nil {
			h.writeError(w, r, writeErr)
			return
		}
		view := h.forgotView(base, next)
		view.Error = base.T(otpCooldownKey, next.CooldownSeconds(h.deps.OTP.Now()))
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.forgot", view)
	case err != nil:
		view := h.forgotView(base, state)
		view.Error = webi18n.ErrorMessage(base.Loc, err, otpSendFailedKey)
		h.writePage(w, r, base, http.StatusOK, "page.forgot", view)
	default:
		if writeErr := h.deps.OTP.Write(w, r, next); writeErr != nil {
			h.writeError(w, r, writeErr)
			return
		}
		flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess(otpSentKey))
		httpx.WriteRedirect(w, r, routepath.Forgot)
	}
}

func (h handlers) handleForgotCooldown(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, forgotTitleKey)
	view := h.forgotView(base, h.readReset(r))
	if err := pagerender.WriteFragment(w, r, http.StatusOK, webtemplates.View("otp.resend", view.Cooldown)); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleForgotVerify(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"))
		return
	}
	base := h.base(w, r, forgotTitleKey)
	state := h.readReset(r)
	if state.Step != otpflow.StepVerify || state.Email == "" {
		httpx.WriteRedirect(w, r, routepath.Forgot)
		return
	}
	if !h.deps.Allow(r, "otp-verify") {
		view := h.forgotView(base, state)
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.forgot", view)
		return
	}
	if err := h.service.verify(r.Context(), state.Email, r.PostForm.Get("otp")); err != nil {
		view := h.forgotView(base, state)
		view.Error = webi18n.ErrorMessage(base.Loc, err, otpFailedKey)
		h.writePage(w, r, base, http.StatusOK, "page.forgot", view)
		return
	}
	state.Step = otpflow.StepReset
	state.Verified = true
	if err := h.deps.OTP.Write(w, r, state); err != nil {
		h.writeError(w, r, err)
		return
	}
	flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess(otpVerifiedKey))
	httpx.WriteRedirect(w, r, routepath.Forgot)
}

func (h handlers) handleForgotReset(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"))
		return
	}
	base := h.base(w, r, forgotTitleKey)
	state := h.readReset(r)
	if state.Step != otpflow.StepReset || !state.Verified {
		httpx.WriteRedirect(w, r, routepath.Forgot)
		return
	}
	values := forms.FromForm(r.PostForm, forms.FieldPassword, forms.FieldConfirmPassword)
	failures, err := h.service.reset(r.Context(), state.Email, values)
	switch {
	case len(failures) > 0:
		view := h.forgotView(base, state)
		view.Errors = base.Localize(failures)
		h.writePage(w, r, base, http.StatusUnprocessableEntity, "page.forgot", view)
	case err != nil:
		view := h.forgotView(base, state)
		view.Error = webi18n.ErrorMessage(base.Loc, err, resetFailedKey)
		h.writePage(w, r, base, http.StatusOK, "page.forgot", view)
	default:
		h.deps.OTP.Clear(w, r)
		flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess(resetDoneKey))
		httpx.WriteRedirect(w, r, routepath.Login)
	}
}

// handleForgotRestart returns to the email step. The send time is kept so a
// restart cannot bypass the cooldown for the same address.
func (h handlers) handleForgotRestart(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	state := h.readReset(r)
	state.Step = otpflow.StepRequest
	state.Verified = false
	if err := h.deps.OTP.Write(w, r, state); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Forgot)
}

func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}

func (h handlers) requireOTP(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.OTP != nil {
		return true
	}
	h.writeError(w, r, apperrors.E(apperrors.KindUnavailable, "otp state is not configured"))
	return false
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, base webtemplates.Base, status int, view string, data any) {
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:       base,
		StatusCode: status,
		Fragment:   webtemplates.View(view, data),
	}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps)
}

