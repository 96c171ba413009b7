package templates

import (
	"net/url"
	"strings"

	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
)

// LanguageOption represents a supported language option in the UI.
type LanguageOption = webi18n.LanguageOption

// LanguageURL returns path with the lang query parameter set to tag, keeping
// other parameters.
func LanguageURL(path string, rawQuery string, tag string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	values.Set(webi18n.LangParam, tag)
	return path + "?" + values.Encode()
}
