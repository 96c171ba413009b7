package registration

import (
	"errors"
	"log"
	"net/http"
	"strings"

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
	rateLimitedKey    = "web.rate_limited"
	registerTitleKey  = "register.title"
	otpTitleKey       = "otp.title"
	saveFailedKey     = "register.save_failed"
	otpSentKey        = "otp.notice.sent"
	otpCooldownKey    = "otp.notice.cooldown"
	otpFailedKey      = "otp.verify_failed"
	otpSendFailedKey  = "otp.send_failed"
	otpMismatchKey    = "otp.email_mismatch"
	pendingMissingKey = "otp.registration_missing"
	accountCreatedKey = "auth.register.success"
	headerTriggerName = "HX-Trigger-Name"
	invalidSubmission = "invalid form submission"
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

// handleRegister renders the form, prefilled from a pending record when the
// visitor came back to change their email, and from ?ref for referrals.
func (h handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	base := h.base(w, r, registerTitleKey)
	f := form{values: forms.Values{}, touched: map[string]bool{}}
	if pending, err := h.deps.Handoff.Load(r.Context(), r); err == nil {
		f = formFromPending(pending)
	}
	if ref := strings.TrimSpace(r.URL.Query().Get(routepath.RegisterRefQuery)); ref != "" {
		f.values[forms.FieldSponsorID] = ref
	}
	view := f.view(base)
	view.Sponsor = h.service.sponsorStatus(r.Context(), base, f.values[forms.FieldSponsorID])
	h.writePage(w, r, base, http.StatusOK, "page.register", view)
}

func (h handlers) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, invalidSubmission))
		return
	}
	base := h.base(w, r, registerTitleKey)
	f := parseForm(r.PostForm)
	f.touchAll()
	if !forms.FormValid(f.values) {
		h.writePage(w, r, base, http.StatusUnprocessableEntity, "page.register", f.view(base))
		return
	}
	if !h.deps.Allow(r, "register") {
		view := f.view(base)
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.register", view)
		return
	}
	pending, err := h.deps.Handoff.Put(r.Context(), w, r, f.registration())
	if err != nil {
		log.Printf("registration: store pending record: %v", err)
		view := f.view(base)
		view.Error = base.T(saveFailedKey)
		h.writePage(w, r, base, http.StatusServiceUnavailable, "page.register", view)
		return
	}
	httpx.WriteRedirect(w, r, routepath.OTPWithEmail(pending.Email))
}

// handleValidate revalidates after a blur and answers with out-of-band
// field errors, the touched list, and the submit button.
func (h handlers) handleValidate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, invalidSubmission))
		return
	}
	base := h.base(w, r, registerTitleKey)
	f := parseForm(r.PostForm)
	f.touch(r.Header.Get(headerTriggerName), r.PostForm.Get("field"))
	view := f.view(base)
	view.OOB = true
	h.writeFragment(w, r, "register.status", view)
}

func (h handlers) handleUsername(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, invalidSubmission))
		return
	}
	base := h.base(w, r, registerTitleKey)
	f := parseForm(r.PostForm)
	f.touch(forms.FieldUsername)
	status := h.service.usernameStatus(r.Context(), base, f.values[forms.FieldUsername])
	if r.Context().Err() != nil {
		// Superseded by a newer keystroke.
		return
	}
	view := f.view(base)
	view.Username = status
	view.OOB = true
	h.writeFragment(w, r, "register.username_response", view)
}

func (h handlers) handleSponsor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, invalidSubmission))
		return
	}
	base := h.base(w, r, registerTitleKey)
	status := h.service.sponsorStatus(r.Context(), base, r.PostForm.Get(forms.FieldSponsorID))
	if r.Context().Err() != nil {
		return
	}
	h.writeFragment(w, r, "register.sponsor", status)
}

func (h handlers) handleStrength(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, invalidSubmission))
		return
	}
	base := h.base(w, r, registerTitleKey)
	h.writeFragment(w, r, "register.strength", strengthView(base, r.PostForm.Get(forms.FieldPassword)))
}

func (h handlers) otpView(base webtemplates.Base, state otpflow.State) webtemplates.OTPView {
	view := webtemplates.OTPView{Base: base, Step: string(state.Step), Email: state.Email}
	if view.Step == "" {
		view.Step = string(otpflow.StepRequest)
	}
	view.Cooldown = webtemplates.CooldownView{
		Base:       base,
		Seconds:    state.CooldownSeconds(h.deps.OTP.Now()),
		PollPath:   routepath.OTPCooldown,
		ResendPath: routepath.OTPResend,
	}
	return view
}

func (h handlers) mismatchView(base webtemplates.Base, email string) webtemplates.OTPView {
	view := h.otpView(base, otpflow.State{Email: email})
	view.Mismatch = true
	view.Error = base.T(otpMismatchKey)
	return view
}

func (h handlers) readState(r *http.Request) otpflow.State {
	state, ok := h.deps.OTP.Read(r, otpflow.PurposeRegister)
	if !ok {
		return otpflow.State{Step: otpflow.StepRequest, Purpose: otpflow.PurposeRegister}
	}
	return state
}

// pendingEmail returns the pending record's email, or "" without one.
func (h handlers) pendingEmail(r *http.Request) string {
	pending, err := h.deps.Handoff.Load(r.Context(), r)
	if err != nil {
		return ""
	}
	return pending.Email
}

// handleOTP shows the verification step for ?email, sending the first code
// when none was sent to that address yet.
func (h handlers) handleOTP(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	base := h.base(w, r, otpTitleKey)
	state := h.readState(r)
	email := strings.TrimSpace(r.URL.Query().Get(routepath.OTPEmailQuery))
	if email == "" && state.Step == otpflow.StepVerify {
		email = state.Email
	}
	pendingEmail := h.pendingEmail(r)
	if email == "" {
		view := h.otpView(base, otpflow.State{Email: pendingEmail, Step: otpflow.StepRequest})
		h.writePage(w, r, base, http.StatusOK, "page.otp", view)
		return
	}
	if pendingEmail != "" && !strings.EqualFold(pendingEmail, email) {
		h.writePage(w, r, base, http.StatusConflict, "page.otp", h.mismatchView(base, email))
		return
	}
	if state.SentTo(email) {
		h.writePage(w, r, base, http.StatusOK, "page.otp", h.otpView(base, state))
		return
	}
	fresh := otpflow.State{Email: email, Step: otpflow.StepRequest, Purpose: otpflow.PurposeRegister}
	if !h.deps.Allow(r, "otp") {
		view := h.otpView(base, fresh)
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.otp", view)
		return
	}
	next, err := h.deps.OTP.Send(r.Context(), h.service.gateway, fresh)
	if err != nil {
		view := h.otpView(base, fresh)
		view.Error = webi18n.ErrorMessage(base.Loc, err, otpSendFailedKey)
		h.writePage(w, r, base, http.StatusOK, "page.otp", view)
		return
	}
	if err := h.deps.OTP.Write(w, r, next); err != nil {
		h.writeError(w, r, err)
		return
	}
	view := h.otpView(base, next)
	view.Notice = base.T(otpSentKey)
	h.writePage(w, r, base, http.StatusOK, "page.otp", view)
}

func (h handlers) handleOTPSend(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, invalidSubmission))
		return
	}
	base := h.base(w, r, otpTitleKey)
	values := forms.FromForm(r.PostForm, forms.FieldEmail)
	email := values[forms.FieldEmail]
	if failures := forms.Validate(forms.EmailRules, values); len(failures) > 0 {
		view := h.otpView(base, otpflow.State{Email: email})
		view.Error = base.T(failures[forms.FieldEmail])
		h.writePage(w, r, base, http.StatusUnprocessableEntity, "page.otp", view)
		return
	}
	if pendingEmail := h.pendingEmail(r); pendingEmail != "" && !strings.EqualFold(pendingEmail, email) {
		h.writePage(w, r, base, http.StatusConflict, "page.otp", h.mismatchView(base, email))
		return
	}
	if !h.deps.Allow(r, "otp") {
		view := h.otpView(base, otpflow.State{Email: email})
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.otp", view)
		return
	}
	state := h.readState(r)
	if !state.SentTo(email) {
		state = otpflow.State{Email: email, Step: otpflow.StepRequest, Purpose: otpflow.PurposeRegister}
	}
	h.send(w, r, base, state)
}

func (h handlers) handleOTPResend(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	base := h.base(w, r, otpTitleKey)
	state := h.readState(r)
	if state.Step != otpflow.StepVerify || state.Email == "" {
		httpx.WriteRedirect(w, r, routepath.OTP)
		return
	}
	if !h.deps.Allow(r, "otp") {
		view := h.otpView(base, state)
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.otp", view)
		return
	}
	h.send(w, r, base, state)
}

// send issues a code for state. Inside the cooldown no API call is made and
// the verify step shows the remaining wait.
func (h handlers) send(w http.ResponseWriter, r *http.Request, base webtemplates.Base, state otpflow.State) {
	next, err := h.deps.OTP.Send(r.Context(), h.service.gateway, state)
	switch {
	case errors.Is(err, otpflow.ErrCooldown):
		next.Step = otpflow.StepVerify
		if writeErr := h.deps.OTP.Write(w, r, next); writeErr != nil {
			h.writeError(w, r, writeErr)
			return
		}
		view := h.otpView(base, next)
		view.Error = base.T(otpCooldownKey, next.CooldownSeconds(h.deps.OTP.Now()))
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.otp", view)
	case err != nil:
		view := h.otpView(base, state)
		view.Error = webi18n.ErrorMessage(base.Loc, err, otpSendFailedKey)
		h.writePage(w, r, base, http.StatusOK, "page.otp", view)
	default:
		if writeErr := h.deps.OTP.Write(w, r, next); writeErr != nil {
			h.writeError(w, r, writeErr)
			return
		}
		flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess(otpSentKey))
		httpx.WriteRedirect(w, r, routepath.OTPWithEmail(next.Email))
	}
}

func (h handlers) handleOTPCooldown(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	base := h.base(w, r, otpTitleKey)
	h.writeFragment(w, r, "otp.resend", h.otpView(base, h.readState(r)).Cooldown)
}

// handleOTPVerify checks the code, then creates the account from the sealed
// pending record. A verified state skips the code check on retry so a failed
// account creation does not burn the code.
func (h handlers) handleOTPVerify(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.E(apperrors.KindInvalidInput, invalidSubmission))
		return
	}
	base := h.base(w, r, otpTitleKey)
	state := h.readState(r)
	if state.Step != otpflow.StepVerify || state.Email == "" {
		httpx.WriteRedirect(w, r, routepath.OTP)
		return
	}
	if !h.deps.Allow(r, "otp-verify") {
		view := h.otpView(base, state)
		view.Error = base.T(rateLimitedKey)
		h.writePage(w, r, base, http.StatusTooManyRequests, "page.otp", view)
		return
	}
	if !state.Verified {
		if err := h.service.verify(r.Context(), state.Email, r.PostForm.Get("otp")); err != nil {
			view := h.otpView(base, state)
			view.Error = webi18n.ErrorMessage(base.Loc, err, otpFailedKey)
			h.writePage(w, r, base, http.StatusOK, "page.otp", view)
			return
		}
		state.Verified = true
		if err := h.deps.OTP.Write(w, r, state); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	pending, err := h.deps.Handoff.Load(r.Context(), r)
	if err != nil {
		view := h.otpView(base, state)
		view.Mismatch = true
		view.Error = base.T(pendingMissingKey)
		h.writePage(w, r, base, http.StatusGone, "page.otp", view)
		return
	}
	if !strings.EqualFold(pending.Email, state.Email) {
		h.writePage(w, r, base, http.StatusConflict, "page.otp", h.mismatchView(base, state.Email))
		return
	}

	result := h.deps.Sessions.Register(r.Context(), registerRequest(pending))
	if !result.Success {
		view := h.otpView(base, state)
		view.Error = result.Message
		if view.Error == "" {
			view.Error = base.T(result.Key)
		}
		h.writePage(w, r, base, http.StatusOK, "page.otp", view)
		return
	}
	if err := h.deps.Handoff.Delete(r.Context(), w, r); err != nil {
		log.Printf("registration: delete pending record: %v", err)
	}
	h.deps.OTP.Clear(w, r)
	h.deps.Cookies.WriteSession(w, r, result.Token)
	flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess(accountCreatedKey))
	httpx.WriteRedirect(w, r, routepath.UserRoot)
}

// handleOTPChangeEmail goes back to the email step. The pending record and
// the last send time are kept.
func (h handlers) handleOTPChangeEmail(w http.ResponseWriter, r *http.Request) {
	if !h.requireOTP(w, r) {
		return
	}
	state := h.readState(r)
	state.Step = otpflow.StepRequest
	state.Verified = false
	if err := h.deps.OTP.Write(w, r, state); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.OTP)
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

func (h handlers) writeFragment(w http.ResponseWriter, r *http.Request, view string, data any) {
	if err := pagerender.WriteFragment(w, r, http.StatusOK, webtemplates.View(view, data)); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps)
}
