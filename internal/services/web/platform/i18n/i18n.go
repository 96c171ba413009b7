// Package i18n resolves the request language and localizes portal copy.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/avasar/portal/internal/platform/i18n/catalog"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
)

const (
	// LangParam is the query parameter used to switch language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "av_lang"

	langCookieMaxAge = 365 * 24 * time.Hour
)

// Localizer formats catalog messages.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	Active bool
}

var (
	supported = catalog.Default().Tags()
	matcher   = language.NewMatcher(supported)
	labels    = map[string]string{"en-US": "English", "hi-IN": "हिन्दी"}
)

// ResolveTag determines the best supported tag for the request. The bool
// reports whether the tag came from the lang query parameter and should be
// persisted.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return supported[0], false
	}
	if raw := strings.TrimSpace(r.URL.Query().Get(LangParam)); raw != "" {
		if tag, ok := match(raw); ok {
			return tag, true
		}
	}
	if raw, ok := sessioncookie.Read(r, LangCookieName); ok {
		if tag, ok := match(raw); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, _ := matcher.Match(tags...)
			return supported[idx], false
		}
	}
	return supported[0], false
}

// Resolve returns the request localizer and its language tag, persisting an
// explicit ?lang choice in a cookie.
func Resolve(w http.ResponseWriter, r *http.Request, jar sessioncookie.Jar) (Localizer, string) {
	tag, persist := ResolveTag(r)
	if persist && w != nil {
		jar.Set(w, r, sessioncookie.Cookie{Name: LangCookieName, Value: tag.String(), MaxAge: langCookieMaxAge})
	}
	return message.NewPrinter(tag), tag.String()
}

// Printer returns a localizer for an explicit tag string.
func Printer(lang string) Localizer {
	tag, ok := match(lang)
	if !ok {
		tag = supported[0]
	}
	return message.NewPrinter(tag)
}

// Options returns the language switcher entries.
func Options(active string) []LanguageOption {
	out := make([]LanguageOption, 0, len(supported))
	for _, tag := range supported {
		label := labels[tag.String()]
		if label == "" {
			label = tag.String()
		}
		out = append(out, LanguageOption{Tag: tag.String(), Label: label, Active: tag.String() == active})
	}
	return out
}

// ErrorMessage returns the user-facing text for err. Server-supplied messages
// win, then the error's own catalog key, then the fallback key.
func ErrorMessage(loc Localizer, err error, fallbackKey string) string {
	if err == nil {
		return ""
	}
	if text := apperrors.Message(err); text != "" {
		return text
	}
	key := apperrors.LocalizationKey(err)
	if key == "" {
		key = fallbackKey
	}
	if loc == nil {
		return key
	}
	return loc.Sprintf(key)
}

func match(raw string) (language.Tag, bool) {
	parsed, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return language.Tag{}, false
	}
	_, idx, confidence := matcher.Match(parsed)
	if confidence == language.No {
		return language.Tag{}, false
	}
	return supported[idx], true
}
