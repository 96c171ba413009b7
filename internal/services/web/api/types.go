package api

import (
	"encoding/json"
	"strings"
	"time"
)

// User mirrors the backend user document.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	ReferralCode string    `json:"referralCode"`
	SponsorID    string    `json:"sponsorId,omitempty"`
	Rank         string    `json:"rank"`
	Phone        string    `json:"phone"`
	ProfilePhoto string    `json:"profilePhoto"`
	Status       string    `json:"status,omitempty"`
	IsActive     bool      `json:"isActive"`
	JoinedAt     time.Time `json:"joinedAt"`

	activeSet bool
}

// HasActive reports whether IsActive carries a value: it was present in the
// decoded document or is true.
func (u User) HasActive() bool {
	return u.activeSet || u.IsActive
}

// UnmarshalJSON accepts the backend's document-store aliases (_id, createdAt,
// joinDate) alongside the canonical field names.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var wire struct {
		plain
		DocumentID string     `json:"_id"`
		CreatedAt  *time.Time `json:"createdAt"`
		JoinDate   *time.Time `json:"joinDate"`
		Active     *bool      `json:"isActive"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*u = User(wire.plain)
	if wire.Active != nil {
		u.IsActive = *wire.Active
		u.activeSet = true
	}
	if u.ID == "" {
		u.ID = wire.DocumentID
	}
	if u.JoinedAt.IsZero() {
		switch {
		case wire.CreatedAt != nil:
			u.JoinedAt = *wire.CreatedAt
		case wire.JoinDate != nil:
			u.JoinedAt = *wire.JoinDate
		}
	}
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	return nil
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AuthResponse is returned by login and account creation.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the final account-creation payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	SponsorID string `json:"sponsorId,omitempty"`
}

// Sponsor identifies the member behind a referral code.
type Sponsor struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ReferralCode string `json:"referralCode"`
}

// DisplayName returns the sponsor's full name, or username when unnamed.
func (s Sponsor) DisplayName() string {
	if name := strings.TrimSpace(s.FirstName + " " + s.LastName); name != "" {
		return name
	}
	return s.Username
}

// ProfileUpdate carries editable profile fields.
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// PhotoUpload is one profile photo file.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PhotoResult is returned by the photo upload endpoint.
type PhotoResult struct {
	User     User   `json:"user"`
	PhotoURL string `json:"photoUrl"`
}

// IncomeBreakdown splits earnings by source.
type IncomeBreakdown struct {
	Available  float64 `json:"available"`
	Pending    float64 `json:"pending"`
	Referral   float64 `json:"referral"`
	Matching   float64 `json:"matching"`
	Generation float64 `json:"generation"`
	Trading    float64 `json:"trading"`
	Reward     float64 `json:"reward"`
}

// Transaction is one income ledger entry.
type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
}

// IncomeSummary is the /users/income payload.
type IncomeSummary struct {
	TotalIncome        float64         `json:"totalIncome"`
	Income             IncomeBreakdown `json:"income"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

// TeamMember is one downline roster entry.
type TeamMember struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Rank       string    `json:"rank"`
	Investment float64   `json:"investment"`
	IsActive   bool      `json:"isActive"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// TeamStats aggregates the downline.
type TeamStats struct {
	TotalMembers    int     `json:"totalMembers"`
	ActiveMembers   int     `json:"activeMembers"`
	TotalInvestment float64 `json:"totalInvestment"`
	TeamIncome      float64 `json:"teamIncome"`
}

// TeamSummary is the /users/team payload.
type TeamSummary struct {
	Team      []TeamMember `json:"team"`
	TotalTeam int          `json:"totalTeam"`
	TeamStats TeamStats    `json:"teamStats"`
}

// Invite is the /users/invite payload.
type Invite struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// NextRank names the next rank and its requirement thresholds.
type NextRank struct {
	Name         string             `json:"name"`
	Requirements map[string]float64 `json:"requirements"`
}

// RankSummary is the /users/rank payload.
type RankSummary struct {
	CurrentRank  string             `json:"currentRank"`
	NextRank     *NextRank          `json:"nextRank"`
	Achievements map[string]float64 `json:"achievements"`
	Progress     *float64           `json:"progress"`
}

// AdminStats is the /admin/stats payload.
type AdminStats struct {
	TotalUsers      int     `json:"totalUsers"`
	ActiveUsers     int     `json:"activeUsers"`
	TotalInvestment float64 `json:"totalInvestment"`
	TotalPayouts    float64 `json:"totalPayouts"`
	NewContacts     int     `json:"newContacts"`
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Status string
}

// ContactMessage is one contact-form submission seen by admins.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactRequest is the public contact-form payload.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
