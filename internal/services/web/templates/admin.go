package templates

import (
	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/routepath"
)

// AdminDashboardView renders platform stats.
type AdminDashboardView struct {
	Base
	Stats api.AdminStats
	Error string
}

// FilterOption is one status filter entry.
type FilterOption struct {
	Value    string
	LabelKey string
	Active   bool
}

// StatusChoice is one selectable record status.
type StatusChoice struct {
	Value    string
	LabelKey string
}

// AdminUsersView renders the user directory.
type AdminUsersView struct {
	Base
	Users         []api.User
	Search        string
	Statuses      []FilterOption
	StatusChoices []StatusChoice
	Error         string
}

// UserStatusPath is the status update action for one user.
func (v AdminUsersView) UserStatusPath(userID string) string {
	return routepath.AdminUserStatus(userID)
}

// AdminContactsView renders contact form submissions.
type AdminContactsView struct {
	Base
	Contacts      []api.ContactMessage
	Statuses      []FilterOption
	StatusChoices []StatusChoice
	Error         string
}

// ContactStatusPath is the status update action for one message.
func (v AdminContactsView) ContactStatusPath(contactID string) string {
	return routepath.AdminContactStatus(contactID)
}
