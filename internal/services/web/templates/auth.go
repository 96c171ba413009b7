package templates

// LoginView renders the login form.
type LoginView struct {
	Base
	Email  string
	Errors map[string]string
	Error  string
}

// CooldownView renders the OTP resend control. While Seconds is positive
// the control is disabled and polls PollPath once a second.
type CooldownView struct {
	Base
	Seconds    int
	PollPath   string
	ResendPath string
}

// ForgotView renders the password reset steps: request, verify, and reset.
type ForgotView struct {
	Base
	Step     string
	Email    string
	Error    string
	Errors   map[string]string
	Cooldown CooldownView
}

// OTPView renders registration email verification.
type OTPView struct {
	Base
	Step   string
	Email  string
	Error  string
	Notice string
	// Mismatch hides the OTP controls and links back to registration.
	Mismatch bool
	Cooldown CooldownView
}
