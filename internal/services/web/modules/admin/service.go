package admin

import (
	"context"
	"slices"
	"strings"

	"github.com/avasar/portal/internal/services/web/api"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

var (
	userStatuses    = []string{"active", "inactive", "pending"}
	contactStatuses = []string{"new", "in-progress", "completed"}
)

var errUnknownStatus = apperrors.EK(apperrors.KindInvalidInput, "admin.status.unknown", "")

func statusLabelKey(status string) string {
	if status == "" {
		return "admin.status.all"
	}
	return "admin.status." + strings.ReplaceAll(status, "-", "_")
}

// normalizeStatus returns status when it is one of allowed, else "".
func normalizeStatus(raw string, allowed []string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if slices.Contains(allowed, raw) {
		return raw
	}
	return ""
}

// filterOptions lists "all" followed by allowed, marking active.
func filterOptions(allowed []string, active string) []webtemplates.FilterOption {
	out := []webtemplates.FilterOption{{Value: "", LabelKey: statusLabelKey(""), Active: active == ""}}
	for _, status := range allowed {
		out = append(out, webtemplates.FilterOption{Value: status, LabelKey: statusLabelKey(status), Active: status == active})
	}
	return out
}

func statusChoices(allowed []string) []webtemplates.StatusChoice {
	out := make([]webtemplates.StatusChoice, 0, len(allowed))
	for _, status := range allowed {
		out = append(out, webtemplates.StatusChoice{Value: status, LabelKey: statusLabelKey(status)})
	}
	return out
}

type service struct {
	gateway Gateway
}

func newService(gateway Gateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) stats(ctx context.Context, token string) (api.AdminStats, error) {
	return s.gateway.AdminStats(ctx, token)
}

// users lists users. Records without a status get one from IsActive.
func (s service) users(ctx context.Context, token string, filter api.UserFilter) ([]api.User, error) {
	users, err := s.gateway.AdminUsers(ctx, token, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Status != "" {
			continue
		}
		users[i].Status = "inactive"
		if users[i].IsActive {
			users[i].Status = "active"
		}
	}
	return users, nil
}

func (s service) setUserStatus(ctx context.Context, token string, userID string, status string) error {
	status = normalizeStatus(status, userStatuses)
	if status == "" || strings.TrimSpace(userID) == "" {
		return errUnknownStatus
	}
	return s.gateway.SetUserStatus(ctx, token, userID, status)
}

func (s service) contacts(ctx context.Context, token string, status string) ([]api.ContactMessage, error) {
	return s.gateway.AdminContacts(ctx, token, status)
}

func (s service) setContactStatus(ctx context.Context, token string, contactID string, status string) error {
	status = normalizeStatus(status, contactStatuses)
	if status == "" || strings.TrimSpace(contactID) == "" {
		return errUnknownStatus
	}
	return s.gateway.SetContactStatus(ctx, token, contactID, status)
}
