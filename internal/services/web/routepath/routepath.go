// Package routepath stores canonical HTTP paths for web modules.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root           = "/"
	About          = "/about"
	Plan           = "/plan"
	Rewards        = "/rewards"
	Contact        = "/contact"
	Health         = "/up"
	StaticPrefix   = "/static/"
	LoginPrefix    = "/login/"
	Login          = "/login"
	LogoutPrefix   = "/logout/"
	Logout         = "/logout"
	Register       = "/register"
	OTP            = "/otp"
	ForgotPrefix   = "/forgot-password/"
	Forgot         = "/forgot-password"
	ForgotResend   = "/forgot-password/resend"
	ForgotVerify   = "/forgot-password/verify"
	ForgotReset    = "/forgot-password/reset"
	ForgotRestart  = "/forgot-password/restart"
	ForgotCooldown = "/forgot-password/cooldown"
)

// Registration and OTP routes.
const (
	RegisterPrefix    = "/register/"
	RegisterValidate  = "/register/validate"
	RegisterUsername  = "/register/username"
	RegisterSponsor   = "/register/sponsor"
	RegisterStrength  = "/register/strength"
	OTPPrefix         = "/otp/"
	OTPSend           = "/otp/send"
	OTPResend         = "/otp/resend"
	OTPVerify         = "/otp/verify"
	OTPChangeEmail    = "/otp/change-email"
	OTPCooldown       = "/otp/cooldown"
	RegisterRefQuery  = "ref"
	OTPEmailQuery     = "email"
	IncomePeriodQuery = "period"
)

// User area routes.
const (
	UserPrefix     = "/user/"
	UserRoot       = "/user"
	UserDashboard  = "/user/dashboard"
	ProfilePrefix  = "/user/profile/"
	UserProfile    = "/user/profile"
	UserPhoto      = "/user/profile/photo"
	TeamPrefix     = "/user/team/"
	UserTeam       = "/user/team"
	UserTeamInvite = "/user/team/invite"
	IncomePrefix   = "/user/income/"
	UserIncome     = "/user/income"
	RankPrefix     = "/user/rank/"
	UserRank       = "/user/rank"
)

// Admin area routes.
const (
	AdminPrefix               = "/admin/"
	AdminRoot                 = "/admin"
	AdminDashboard            = "/admin/dashboard"
	AdminUsers                = "/admin/users"
	AdminUserStatusPattern    = "/admin/users/{userID}/status"
	AdminContacts             = "/admin/contacts"
	AdminContactStatusPattern = "/admin/contacts/{contactID}/status"
)

// IsGuestOnly reports whether path is a page signed-in visitors are sent away
// from.
func IsGuestOnly(path string) bool {
	path = strings.TrimSuffix(strings.TrimSpace(path), "/")
	return path == Login || path == Register
}

// Home returns the landing page for a signed-in role.
func Home(isAdmin bool) string {
	if isAdmin {
		return AdminRoot
	}
	return UserRoot
}

// RegisterWithRef returns the registration route with a prefilled sponsor code.
func RegisterWithRef(code string) string {
	return withQuery(Register, RegisterRefQuery, code)
}

// OTPWithEmail returns the OTP page for email.
func OTPWithEmail(email string) string {
	return withQuery(OTP, OTPEmailQuery, email)
}

// UserIncomeWithPeriod returns the income page filtered by period.
func UserIncomeWithPeriod(period string) string {
	period = strings.TrimSpace(period)
	if period == "" || period == "all" {
		return UserIncome
	}
	return withQuery(UserIncome, IncomePeriodQuery, period)
}

// AdminUserStatus returns the status update route for one user.
func AdminUserStatus(userID string) string {
	return AdminUsers + "/" + escapeSegment(userID) + "/status"
}

// AdminContactStatus returns the status update route for one contact message.
func AdminContactStatus(contactID string) string {
	return AdminContacts + "/" + escapeSegment(contactID) + "/status"
}

func withQuery(path string, key string, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return path
	}
	return path + "?" + url.Values{key: {value}}.Encode()
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
