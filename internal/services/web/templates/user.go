package templates

import (
	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/ranks"
)

// DashboardView renders the member dashboard.
type DashboardView struct {
	Base
	ReferralLink string
	Error        string
	Income       api.IncomeSummary
	Team         api.TeamSummary
}

// ProfileForm is the editable profile input.
type ProfileForm struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ProfileView renders the profile page.
type ProfileView struct {
	Base
	Form       ProfileForm
	Errors     map[string]string
	Error      string
	PhotoError string
}

// TeamView renders the downline roster and invite form.
type TeamView struct {
	Base
	Summary     api.TeamSummary
	Invite      api.Invite
	Errors      map[string]string
	Error       string
	InviteError string
}

// PeriodOption is one income period tab.
type PeriodOption struct {
	LabelKey string
	Href     string
	Active   bool
}

// IncomeView renders the income page.
type IncomeView struct {
	Base
	Income  api.IncomeSummary
	Periods []PeriodOption
	Error   string
}

// RankView renders current rank and next-rank progress.
type RankView struct {
	Base
	// Current is nil when the backend reports a rank outside the ladder.
	Current      *ranks.Tier
	CurrentName  string
	NextName     string
	Progress     int
	Band         string
	Requirements []ranks.Progress
	Tiers        []ranks.Tier
	Error        string
}
