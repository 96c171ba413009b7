package templates

// RegisterField is one registration input with its current value and
// visible error.
type RegisterField struct {
	Name         string
	LabelKey     string
	Type         string
	Autocomplete string
	Value        string
	Error        string
	Required     bool
	// Secret inputs never echo their value back.
	Secret bool
}

// UsernameStatus is the live availability result.
type UsernameStatus struct {
	State   string
	Message string
}

// SponsorStatus is the live referral code lookup result.
type SponsorStatus struct {
	Name  string
	Error string
	Label string
}

// StrengthView is the password strength meter.
type StrengthView struct {
	Score int
	Width int
	Label string
	Shown bool
}

// RegisterView renders the registration page and its live fragments.
type RegisterView struct {
	Base
	Fields   []RegisterField
	Username UsernameStatus
	Sponsor  SponsorStatus
	Strength StrengthView
	// Touched is the comma separated list of fields the user has left.
	Touched string
	Valid   bool
	Error   string
	// OOB marks fragments for out-of-band swapping.
	OOB bool
}
