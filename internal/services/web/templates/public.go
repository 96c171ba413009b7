package templates

import "github.com/avasar/portal/internal/services/web/ranks"

// PlanLevel is one commission row, e.g. levels "3-10" paying 2%.
type PlanLevel struct {
	Levels  string
	Percent float64
}

// PlanSection is one commission table on the plan page.
type PlanSection struct {
	TitleKey string
	NoteKey  string
	Levels   []PlanLevel
}

// PlanView renders the business plan page.
type PlanView struct {
	Base
	JoiningFee   float64
	Sections     []PlanSection
	ROIPrincipal float64
	ROIMonthly   float64
	ROIMonths    int
}

// RewardsView renders the rank reward table.
type RewardsView struct {
	Base
	MatchingBonus string
	Tiers         []ranks.Tier
}

// ContactForm is the public contact form input.
type ContactForm struct {
	Name    string
	Email   string
	Message string
}

// ContactView renders the contact page.
type ContactView struct {
	Base
	Form   ContactForm
	Errors map[string]string
	Error  string
	Sent   bool
}
