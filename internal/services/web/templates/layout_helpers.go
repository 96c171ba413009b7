package templates

import (
	"strings"

	"github.com/avasar/portal/internal/services/web/routepath"
)

// NavItem is one navigation link.
type NavItem struct {
	LabelKey string
	Href     string
	Active   bool
}

var (
	publicNav = []NavItem{
		{LabelKey: "web.nav.home", Href: routepath.Root},
		{LabelKey: "web.nav.about", Href: routepath.About},
		{LabelKey: "web.nav.plan", Href: routepath.Plan},
		{LabelKey: "web.nav.rewards", Href: routepath.Rewards},
		{LabelKey: "web.nav.contact", Href: routepath.Contact},
	}
	userNav = []NavItem{
		{LabelKey: "web.nav.dashboard", Href: routepath.UserDashboard},
		{LabelKey: "web.nav.profile", Href: routepath.UserProfile},
		{LabelKey: "web.nav.team", Href: routepath.UserTeam},
		{LabelKey: "web.nav.income", Href: routepath.UserIncome},
		{LabelKey: "web.nav.rank", Href: routepath.UserRank},
	}
	adminNav = []NavItem{
		{LabelKey: "web.nav.dashboard", Href: routepath.AdminDashboard},
		{LabelKey: "web.nav.users", Href: routepath.AdminUsers},
		{LabelKey: "web.nav.contacts", Href: routepath.AdminContacts},
	}
)

func navItems(area Area, currentPath string) []NavItem {
	var source []NavItem
	switch area {
	case AreaUser:
		source = userNav
	case AreaAdmin:
		source = adminNav
	default:
		source = publicNav
	}
	out := make([]NavItem, len(source))
	for i, item := range source {
		item.Active = isActivePath(currentPath, item.Href)
		out[i] = item
	}
	return out
}

func isActivePath(currentPath string, href string) bool {
	currentPath = strings.TrimSpace(currentPath)
	if href == routepath.Root {
		return currentPath == routepath.Root
	}
	return currentPath == href || strings.HasPrefix(currentPath, href+"/")
}
