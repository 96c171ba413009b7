package registration

import (
	"context"
	"net/url"
	"strings"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/forms"
	"github.com/avasar/portal/internal/services/web/handoff"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

const (
	touchedField = "touched"

	usernameAvailable = "available"
	usernameTaken     = "taken"
	usernameError     = "error"
)

type fieldSpec struct {
	name         string
	inputType    string
	autocomplete string
	secret       bool
}

// fieldSpecs lists the form inputs in display order.
var fieldSpecs = []fieldSpec{
	{name: forms.FieldFirstName, inputType: "text", autocomplete: "given-name"},
	{name: forms.FieldLastName, inputType: "text", autocomplete: "family-name"},
	{name: forms.FieldUsername, inputType: "text", autocomplete: "username"},
	{name: forms.FieldEmail, inputType: "email", autocomplete: "email"},
	{name: forms.FieldPhone, inputType: "tel", autocomplete: "tel"},
	{name: forms.FieldPassword, inputType: "password", autocomplete: "new-password", secret: true},
	{name: forms.FieldConfirmPassword, inputType: "password", autocomplete: "new-password", secret: true},
	{name: forms.FieldSponsorID, inputType: "text", autocomplete: "off"},
}

var requiredFields = func() map[string]bool {
	out := map[string]bool{}
	for _, rule := range forms.RegistrationRules {
		out[rule.Field] = rule.Required
	}
	return out
}()

// form is one parsed registration submission.
type form struct {
	values  forms.Values
	touched map[string]bool
}

func parseForm(posted url.Values) form {
	f := form{values: forms.FromForm(posted, forms.RegistrationFields()...), touched: map[string]bool{}}
	for _, name := range strings.Split(posted.Get(touchedField), ",") {
		if name = strings.TrimSpace(name); name != "" && isField(name) {
			f.touched[name] = true
		}
	}
	return f
}

func formFromPending(pending handoff.PendingRegistration) form {
	return form{
		values: forms.Values{
			forms.FieldFirstName: pending.FirstName,
			forms.FieldLastName:  pending.LastName,
			forms.FieldUsername:  pending.Username,
			forms.FieldEmail:     pending.Email,
			forms.FieldPhone:     pending.Phone,
			forms.FieldSponsorID: pending.SponsorID,
		},
		touched: map[string]bool{},
	}
}

func isField(name string) bool {
	for _, spec := range fieldSpecs {
		if spec.name == name {
			return true
		}
	}
	return false
}

func (f form) touch(names ...string) {
	for _, name := range names {
		if isField(name) {
			f.touched[name] = true
		}
	}
}

func (f form) touchAll() {
	for _, spec := range fieldSpecs {
		f.touched[spec.name] = true
	}
}

func (f form) registration() handoff.Registration {
	return handoff.Registration{
		Username:  f.values[forms.FieldUsername],
		Email:     f.values[forms.FieldEmail],
		Password:  f.values[forms.FieldPassword],
		FirstName: f.values[forms.FieldFirstName],
		LastName:  f.values[forms.FieldLastName],
		Phone:     f.values[forms.FieldPhone],
		SponsorID: f.values[forms.FieldSponsorID],
	}
}

// view renders f. Errors show only on touched fields; the submit button
// follows the whole form's validity.
func (f form) view(base webtemplates.Base) webtemplates.RegisterView {
	failures := forms.ValidateAll(f.values)
	view := webtemplates.RegisterView{Base: base, Valid: len(failures) == 0}
	touched := make([]string, 0, len(f.touched))
	for _, spec := range fieldSpecs {
		field := webtemplates.RegisterField{
			Name:         spec.name,
			LabelKey:     "register.field." + spec.name,
			Type:         spec.inputType,
			Autocomplete: spec.autocomplete,
			Required:     requiredFields[spec.name],
			Secret:       spec.secret,
		}
		if !spec.secret {
			field.Value = f.values[spec.name]
		}
		if f.touched[spec.name] {
			touched = append(touched, spec.name)
			if key := failures[spec.name]; key != "" {
				field.Error = base.T(key)
			}
		}
		view.Fields = append(view.Fields, field)
	}
	view.Touched = strings.Join(touched, ",")
	view.Strength = strengthView(base, f.values[forms.FieldPassword])
	return view
}

func strengthView(base webtemplates.Base, password string) webtemplates.StrengthView {
	strength := forms.PasswordStrength(password)
	return webtemplates.StrengthView{
		Score: strength.Score,
		Width: strength.Score * 20,
		Label: base.T(strength.Key),
		Shown: password != "",
	}
}

type service struct {
	gateway Gateway
}

func newService(gateway Gateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

// usernameStatus checks availability for a well-formed username. Malformed
// names report no status; the field error covers them.
func (s service) usernameStatus(ctx context.Context, base webtemplates.Base, username string) webtemplates.UsernameStatus {
	if username == "" || forms.ValidateField(forms.FieldUsername, forms.Values{forms.FieldUsername: username}) != "" {
		return webtemplates.UsernameStatus{}
	}
	available, err := s.gateway.CheckUsername(ctx, username)
	switch {
	case err != nil:
		return webtemplates.UsernameStatus{State: usernameError, Message: webi18n.ErrorMessage(base.Loc, err, "register.username.check_failed")}
	case available:
		return webtemplates.UsernameStatus{State: usernameAvailable, Message: base.T("register.username.available")}
	default:
		return webtemplates.UsernameStatus{State: usernameTaken, Message: base.T("register.username.taken")}
	}
}

// sponsorStatus looks up a referral code. Failures never block submission.
func (s service) sponsorStatus(ctx context.Context, base webtemplates.Base, code string) webtemplates.SponsorStatus {
	code = strings.TrimSpace(code)
	if code == "" {
		return webtemplates.SponsorStatus{}
	}
	sponsor, err := s.gateway.LookupSponsor(ctx, code)
	if err != nil {
		return webtemplates.SponsorStatus{Error: base.T("register.sponsor.invalid")}
	}
	return webtemplates.SponsorStatus{Name: sponsor.DisplayName(), Label: base.T("register.sponsor.label")}
}

func (s service) verify(ctx context.Context, email string, otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return apperrors.EK(apperrors.KindInvalidInput, "otp.code_required", "")
	}
	return s.gateway.VerifyOTP(ctx, email, otp)
}

func registerRequest(pending handoff.PendingRegistration) api.RegisterRequest {
	return api.RegisterRequest{
		Username:  pending.Username,
		Email:     pending.Email,
		Password:  pending.Password,
		FirstName: pending.FirstName,
		LastName:  pending.LastName,
		Phone:     pending.Phone,
		SponsorID: pending.SponsorID,
	}
}
