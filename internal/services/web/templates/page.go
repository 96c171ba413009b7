package templates

import (
	"strings"

	"github.com/avasar/portal/internal/services/web/routepath"
	"github.com/avasar/portal/internal/services/web/session"
)

// Area selects the navigation shown around a page.
type Area string

const (
	AreaPublic Area = "public"
	AreaUser   Area = "user"
	AreaAdmin  Area = "admin"
)

// Toast is a one-shot notice shown once after a redirect.
type Toast struct {
	Kind    string
	Message string
}

// Base provides shared layout context for pages. Every view embeds it so
// templates can call .T and reach the signed-in user.
type Base struct {
	Loc       Localizer
	Lang      string
	Path      string
	Query     string
	TitleKey  string
	Area      Area
	User      *session.UserSummary
	Languages []LanguageOption
	Toast     *Toast
}

// T translates key for the request locale.
func (b Base) T(key string, args ...any) string {
	return T(b.Loc, key, args...)
}

// Localize translates a field to key map, as returned by form validation.
func (b Base) Localize(keys map[string]string) map[string]string {
	out := make(map[string]string, len(keys))
	for field, key := range keys {
		out[field] = b.T(key)
	}
	return out
}

// Title is the localized document title.
func (b Base) Title() string {
	if strings.TrimSpace(b.TitleKey) == "" {
		return "Avasar"
	}
	return b.T(b.TitleKey) + " | Avasar"
}

// SignedIn reports whether a user is attached.
func (b Base) SignedIn() bool {
	return b.User != nil
}

// HomePath is the signed-in user's landing page.
func (b Base) HomePath() string {
	return routepath.Home(b.User.IsAdmin())
}

// LanguageURL switches the current page to tag.
func (b Base) LanguageURL(tag string) string {
	return LanguageURL(b.Path, b.Query, tag)
}

// Nav returns the navigation items for the page area.
func (b Base) Nav() []NavItem {
	return navItems(b.Area, b.Path)
}
