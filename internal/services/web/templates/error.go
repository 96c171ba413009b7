package templates

import "net/http"

const (
	appErrorPageTitleNotFoundKey  = "web.error.page_title_not_found"
	appErrorPageTitleServerErrKey = "web.error.page_title_server_error"
	appErrorHeadingNotFoundKey    = "web.error.title_not_found"
	appErrorHeadingServerErrKey   = "web.error.title_server_error"
	appErrorMessageNotFoundKey    = "web.error.message_not_found"
	appErrorMessageServerErrKey   = "web.error.message_server_error"
)

// ErrorView is the shared app error page.
type ErrorView struct {
	Base
	Status int
}

// AppErrorPageTitleKey returns the page title key for an error status.
func AppErrorPageTitleKey(statusCode int) string {
	if normalizeAppErrorStatus(statusCode) == http.StatusNotFound {
		return appErrorPageTitleNotFoundKey
	}
	return appErrorPageTitleServerErrKey
}

// Heading is the localized error heading.
func (v ErrorView) Heading() string {
	if normalizeAppErrorStatus(v.Status) == http.StatusNotFound {
		return v.T(appErrorHeadingNotFoundKey)
	}
	return v.T(appErrorHeadingServerErrKey)
}

// Message is the localized error explanation.
func (v ErrorView) Message() string {
	if normalizeAppErrorStatus(v.Status) == http.StatusNotFound {
		return v.T(appErrorMessageNotFoundKey)
	}
	return v.T(appErrorMessageServerErrKey)
}

func normalizeAppErrorStatus(statusCode int) int {
	if statusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
