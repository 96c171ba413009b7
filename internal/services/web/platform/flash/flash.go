// Package flash provides one-time toast notices persisted across redirects.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
)

// CookieName is the cookie used for one-time notices.
const CookieName = "av_flash"

// Kind classifies notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice stores one flash message. Key is a catalog key; Message, when set,
// is server-supplied text shown as is.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message,omitempty"`
}

// NoticeSuccess creates a success notice for the provided localization key.
func NoticeSuccess(key string) Notice {
	return Notice{Kind: KindSuccess, Key: key}
}

// NoticeError creates an error notice for the provided localization key.
func NoticeError(key string) Notice {
	return Notice{Kind: KindError, Key: key}
}

// Write stores a notice cookie for the next page render.
func Write(w http.ResponseWriter, r *http.Request, jar sessioncookie.Jar, notice Notice) {
	normalized, ok := normalizeNotice(notice)
	if !ok {
		return
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return
	}
	jar.Set(w, r, sessioncookie.Cookie{
		Name:  CookieName,
		Value: base64.RawURLEncoding.EncodeToString(payload),
	})
}

// ReadAndClear reads the notice cookie and expires it.
func ReadAndClear(w http.ResponseWriter, r *http.Request, jar sessioncookie.Jar) (Notice, bool) {
	raw, ok := sessioncookie.Read(r, CookieName)
	if !ok {
		return Notice{}, false
	}
	jar.Expire(w, r, CookieName, "/")
	return decodeNotice(raw)
}

func decodeNotice(raw string) (Notice, bool) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return Notice{}, false
	}
	var notice Notice
	if err := json.Unmarshal(decoded, &notice); err != nil {
		return Notice{}, false
	}
	return normalizeNotice(notice)
}

func normalizeNotice(notice Notice) (Notice, bool) {
	notice.Key = strings.TrimSpace(notice.Key)
	notice.Message = strings.TrimSpace(notice.Message)
	if notice.Key == "" && notice.Message == "" {
		return Notice{}, false
	}
	notice.Kind = Kind(strings.ToLower(strings.TrimSpace(string(notice.Kind))))
	switch notice.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
		return notice, true
	default:
		return Notice{}, false
	}
}
