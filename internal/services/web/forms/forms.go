// Package forms validates registration, login, and password reset input.
//
// Validation results are catalog keys in the "forms" namespace so the same
// rules drive live HTMX feedback and final submission checks.
package forms

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Registration field names, matching the HTML form input names.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldSponsorID       = "sponsorId"
	FieldName            = "name"
	FieldMessage         = "message"
)

// passwordSymbols is the fixed special-character set a password must use.
const passwordSymbols = "@$!%*?&"

// Values holds trimmed form input by field name.
type Values map[string]string

// FromForm copies the named fields from a parsed form. Passwords are kept
// verbatim; everything else is trimmed.
func FromForm(form url.Values, fields ...string) Values {
	out := make(Values, len(fields))
	for _, field := range fields {
		value := form.Get(field)
		if field != FieldPassword && field != FieldConfirmPassword {
			value = strings.TrimSpace(value)
		}
		out[field] = value
	}
	return out
}

// Rule declares the constraints for one field.
type Rule struct {
	Field    string
	Required bool
	MinLen   int
	MaxLen   int
	Pattern  *regexp.Regexp
	// Check replaces Pattern for rules RE2 cannot express.
	Check func(string) bool
	// Match names another field this one must equal.
	Match string
}

var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\d{10}$`)
)

// RegistrationRules is the registration form rule table, in display order.
var RegistrationRules = []Rule{
	{Field: FieldFirstName, Required: true, MinLen: 2, MaxLen: 50, Pattern: namePattern},
	{Field: FieldLastName, Required: true, MinLen: 2, MaxLen: 50, Pattern: namePattern},
	{Field: FieldUsername, Required: true, MinLen: 3, MaxLen: 20, Pattern: usernamePattern},
	{Field: FieldEmail, Required: true, Pattern: emailPattern},
	{Field: FieldPhone, Required: true, Pattern: phonePattern},
	{Field: FieldPassword, Required: true, MinLen: 8, Check: passwordComplex},
	{Field: FieldConfirmPassword, Required: true, Match: FieldPassword},
}

// LoginRules validates the login form.
var LoginRules = []Rule{
	{Field: FieldEmail, Required: true, Pattern: emailPattern},
	{Field: FieldPassword, Required: true},
}

// ResetRules validates a new password and its confirmation.
var ResetRules = []Rule{
	{Field: FieldPassword, Required: true, MinLen: 8, Check: passwordComplex},
	{Field: FieldConfirmPassword, Required: true, Match: FieldPassword},
}

// EmailRules validates a lone email address.
var EmailRules = []Rule{
	{Field: FieldEmail, Required: true, Pattern: emailPattern},
}

// ProfileRules validates the editable profile fields.
var ProfileRules = []Rule{
	{Field: FieldFirstName, Required: true, MinLen: 2, MaxLen: 50, Pattern: namePattern},
	{Field: FieldLastName, Required: true, MinLen: 2, MaxLen: 50, Pattern: namePattern},
	{Field: FieldEmail, Required: true, Pattern: emailPattern},
	{Field: FieldPhone, Required: true, Pattern: phonePattern},
}

// InviteRules validates a team invitation. Phone is optional.
var InviteRules = []Rule{
	{Field: FieldName, Required: true, MinLen: 2, MaxLen: 100},
	{Field: FieldEmail, Required: true, Pattern: emailPattern},
	{Field: FieldPhone, Pattern: phonePattern},
}

// ContactRules validates the public contact form.
var ContactRules = []Rule{
	{Field: FieldName, Required: true, MinLen: 2, MaxLen: 100},
	{Field: FieldEmail, Required: true, Pattern: emailPattern},
	{Field: FieldMessage, Required: true, MinLen: 10, MaxLen: 2000},
}

// RegistrationFields lists every registration input, including the optional
// sponsor id.
func RegistrationFields() []string {
	out := make([]string, 0, len(RegistrationRules)+1)
	for _, rule := range RegistrationRules {
		out = append(out, rule.Field)
	}
	return append(out, FieldSponsorID)
}

// ValidateField returns the catalog key of the first failing registration
// rule for field, or "" when it validates.
func ValidateField(field string, values Values) string {
	return validateWith(RegistrationRules, field, values)
}

// ValidateAll validates every registration field and returns failures keyed
// by field name.
func ValidateAll(values Values) map[string]string {
	return Validate(RegistrationRules, values)
}

// FormValid reports whether every registration rule passes.
func FormValid(values Values) bool {
	return len(ValidateAll(values)) == 0
}

// Validate applies rules to values and returns failures keyed by field.
func Validate(rules []Rule, values Values) map[string]string {
	out := map[string]string{}
	for _, rule := range rules {
		if key := rule.validate(values); key != "" {
			out[rule.Field] = key
		}
	}
	return out
}

// IsEmail reports whether value has the accepted email shape.
func IsEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

func validateWith(rules []Rule, field string, values Values) string {
	for _, rule := range rules {
		if rule.Field == field {
			return rule.validate(values)
		}
	}
	return ""
}

func (r Rule) validate(values Values) string {
	value := values[r.Field]
	if value == "" {
		if r.Required {
			return errorKey(r.Field, "required")
		}
		return ""
	}
	length := utf8.RuneCountInString(value)
	if r.MinLen > 0 && length < r.MinLen {
		return errorKey(r.Field, "min")
	}
	if r.MaxLen > 0 && length > r.MaxLen {
		return errorKey(r.Field, "max")
	}
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		return errorKey(r.Field, "pattern")
	}
	if r.Check != nil && !r.Check(value) {
		return errorKey(r.Field, "pattern")
	}
	if r.Match != "" && value != values[r.Match] {
		return "forms.password.mismatch"
	}
	return ""
}

func errorKey(field string, rule string) string {
	return "forms." + field + "." + rule
}

func passwordComplex(value string) bool {
	return strings.ContainsAny(value, "abcdefghijklmnopqrstuvwxyz") &&
		strings.ContainsAny(value, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") &&
		strings.ContainsAny(value, "0123456789") &&
		strings.ContainsAny(value, passwordSymbols)
}

// Strength is a password strength score from 0 to 5.
type Strength struct {
	Score int
	// Label is the English label; Key is its catalog key.
	Label string
	Key   string
}

var strengthLabels = [...]string{"Very Weak", "Weak", "Fair", "Good", "Strong", "Very Strong"}

// PasswordStrength scores password by counting satisfied rules: length of
// at least 8, a lowercase letter, an uppercase letter, a digit, and a symbol.
func PasswordStrength(password string) Strength {
	score := 0
	if utf8.RuneCountInString(password) >= 8 {
		score++
	}
	for _, class := range []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		passwordSymbols,
	} {
		if strings.ContainsAny(password, class) {
			score++
		}
	}
	return Strength{
		Score: score,
		Label: strengthLabels[score],
		Key:   "forms.strength." + strengthSlug(score),
	}
}

func strengthSlug(score int) string {
	return strings.ReplaceAll(strings.ToLower(strengthLabels[score]), " ", "_")
}
