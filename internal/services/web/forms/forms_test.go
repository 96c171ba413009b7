package forms

import (
	"net/url"
	"testing"

	"github.com/avasar/portal/internal/platform/i18n/catalog"
)

func validRegistration() Values {
	return Values{
		FieldFirstName:       "Alice",
		FieldLastName:        "Lee",
		FieldUsername:        "alice01",
		FieldEmail:           "a@x.com",
		FieldPhone:           "9998887776",
		FieldPassword:        "Abcd123!",
		FieldConfirmPassword: "Abcd123!",
	}
}

func TestValidateFieldRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field string
		value string
		want  string
	}{
		{FieldFirstName, "", "forms.firstName.required"},
		{FieldFirstName, "A", "forms.firstName.min"},
		{FieldFirstName, "Mary Ann", ""},
		{FieldFirstName, "Al1ce", "forms.firstName.pattern"},
		{FieldLastName, "Leeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", "forms.lastName.max"},
		{FieldUsername, "al", "forms.username.min"},
		{FieldUsername, "alice-01", "forms.username.pattern"},
		{FieldUsername, "alice_01", ""},
		{FieldUsername, "abcdefghijklmnopqrstu", "forms.username.max"},
		{FieldEmail, "a@x", "forms.email.pattern"},
		{FieldEmail, "a b@x.com", "forms.email.pattern"},
		{FieldEmail, "a@x.com", ""},
		{FieldPhone, "12345", "forms.phone.pattern"},
		{FieldPhone, "99988877766", "forms.phone.pattern"},
		{FieldPhone, "9998887776", ""},
		{FieldPassword, "Ab1!", "forms.password.min"},
		{FieldPassword, "abcd1234!", "forms.password.pattern"},
		{FieldPassword, "Abcd1234", "forms.password.pattern"},
		{FieldPassword, "Abcd123!", ""},
		{FieldSponsorID, "", ""},
		{"unknown", "x", ""},
	}
	for _, tc := range tests {
		t.Run(tc.field+"="+tc.value, func(t *testing.T) {
			t.Parallel()

			values := validRegistration()
			values[tc.field] = tc.value
			if got := ValidateField(tc.field, values); got != tc.want {
				t.Fatalf("ValidateField(%q, %q) = %q, want %q", tc.field, tc.value, got, tc.want)
			}
		})
	}
}

func TestConfirmPasswordMustMatch(t *testing.T) {
	t.Parallel()

	values := validRegistration()
	values[FieldConfirmPassword] = "Abcd123?"
	if got := ValidateField(FieldConfirmPassword, values); got != "forms.password.mismatch" {
		t.Fatalf("ValidateField(confirmPassword) = %q, want mismatch", got)
	}
	values[FieldConfirmPassword] = ""
	if got := ValidateField(FieldConfirmPassword, values); got != "forms.confirmPassword.required" {
		t.Fatalf("ValidateField(confirmPassword empty) = %q, want required", got)
	}
}

func TestFormValidIffEveryRequiredFieldValidates(t *testing.T) {
	t.Parallel()

	if !FormValid(validRegistration()) {
		t.Fatalf("FormValid(valid) = false, errors = %v", ValidateAll(validRegistration()))
	}
	for _, rule := range RegistrationRules {
		t.Run(rule.Field, func(t *testing.T) {
			t.Parallel()

			broken := validRegistration()
			broken[rule.Field] = ""
			if FormValid(broken) {
				t.Fatalf("FormValid() = true with empty %s", rule.Field)
			}
			// Re-enabling is immediate once the value is corrected.
			broken[rule.Field] = validRegistration()[rule.Field]
			if !FormValid(broken) {
				t.Fatalf("FormValid() = false after restoring %s", rule.Field)
			}
		})
	}
}

func TestOptionalSponsorDoesNotAffectValidity(t *testing.T) {
	t.Parallel()

	values := validRegistration()
	values[FieldSponsorID] = "not a real code"
	if !FormValid(values) {
		t.Fatal("FormValid() = false, want sponsor id ignored")
	}
}

func TestPasswordStrengthIsMonotonic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		score    int
		label    string
	}{
		{"", 0, "Very Weak"},
		{"a", 1, "Weak"},
		{"aB", 2, "Fair"},
		{"aB3", 3, "Good"},
		{"aB3!", 4, "Strong"},
		{"aB3!efgh", 5, "Very Strong"},
	}
	previous := -1
	for _, tc := range tests {
		got := PasswordStrength(tc.password)
		if got.Score != tc.score || got.Label != tc.label {
			t.Fatalf("PasswordStrength(%q) = %+v, want score %d label %q", tc.password, got, tc.score, tc.label)
		}
		if got.Score < previous {
			t.Fatalf("PasswordStrength(%q) score %d decreased from %d", tc.password, got.Score, previous)
		}
		previous = got.Score
	}
}

func TestValidationKeysExistInCatalog(t *testing.T) {
	t.Parallel()

	bundle := catalog.Default()
	keys := []string{"forms.password.mismatch"}
	var rules []Rule
	for _, set := range [][]Rule{RegistrationRules, LoginRules, ResetRules, EmailRules, ProfileRules, InviteRules, ContactRules} {
		rules = append(rules, set...)
	}
	for _, rule := range rules {
		if rule.Required {
			keys = append(keys, errorKey(rule.Field, "required"))
		}
		if rule.MinLen > 0 {
			keys = append(keys, errorKey(rule.Field, "min"))
		}
		if rule.MaxLen > 0 {
			keys = append(keys, errorKey(rule.Field, "max"))
		}
		if rule.Pattern != nil || rule.Check != nil {
			keys = append(keys, errorKey(rule.Field, "pattern"))
		}
	}
	for score := 0; score <= 5; score++ {
		keys = append(keys, "forms.strength."+strengthSlug(score))
	}
	for _, key := range keys {
		if _, ok := bundle.Message(catalog.BaseLocale, key); !ok {
			t.Fatalf("catalog missing %q", key)
		}
	}
}

func TestFromFormTrimsAllButPasswords(t *testing.T) {
	t.Parallel()

	form := url.Values{
		FieldEmail:    {"  a@x.com "},
		FieldPassword: {" Abcd123! "},
	}
	values := FromForm(form, FieldEmail, FieldPassword)
	if values[FieldEmail] != "a@x.com" {
		t.Fatalf("email = %q", values[FieldEmail])
	}
	if values[FieldPassword] != " Abcd123! " {
		t.Fatalf("password = %q, want untrimmed", values[FieldPassword])
	}
}

func TestLoginRules(t *testing.T) {
	t.Parallel()

	got := Validate(LoginRules, Values{FieldEmail: "bad", FieldPassword: ""})
	if got[FieldEmail] != "forms.email.pattern" || got[FieldPassword] != "forms.password.required" {
		t.Fatalf("Validate(LoginRules) = %v", got)
	}
}

func TestInviteAndContactRules(t *testing.T) {
	t.Parallel()

	got := Validate(InviteRules, Values{FieldName: "Ravi", FieldEmail: "r@x.com", FieldPhone: ""})
	if len(got) != 0 {
		t.Fatalf("Validate(InviteRules) without phone = %v, want none", got)
	}
	got = Validate(InviteRules, Values{FieldName: "Ravi", FieldEmail: "r@x.com", FieldPhone: "12"})
	if got[FieldPhone] != "forms.phone.pattern" {
		t.Fatalf("Validate(InviteRules) short phone = %v", got)
	}
	got = Validate(ContactRules, Values{FieldName: "A", FieldEmail: "a@x.com", FieldMessage: "hi"})
	if got[FieldName] != "forms.name.min" || got[FieldMessage] != "forms.message.min" {
		t.Fatalf("Validate(ContactRules) = %v", got)
	}
}

func TestProfileRulesCoverEditableFields(t *testing.T) {
	t.Parallel()

	want := []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone}
	if len(ProfileRules) != len(want) {
		t.Fatalf("ProfileRules len = %d, want %d", len(ProfileRules), len(want))
	}
	for i, rule := range ProfileRules {
		if rule.Field != want[i] {
			t.Fatalf("ProfileRules[%d] = %q, want %q", i, rule.Field, want[i])
		}
	}
}
