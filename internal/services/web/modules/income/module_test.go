package income

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avasar/portal/internal/services/web/api"
	module "github.com/avasar/portal/internal/services/web/module"
)

type fakeGateway struct {
	periods chan string
}

func (f fakeGateway) Income(_ context.Context, _ string, period string) (api.IncomeSummary, error) {
	f.periods <- period
	return api.IncomeSummary{
		TotalIncome: 48000,
		Income:      api.IncomeBreakdown{Available: 12000, Pending: 3000, Referral: 20000, Matching: 8000},
		RecentTransactions: []api.Transaction{
			{ID: "t1", Type: "referral", Description: "Direct referral bonus", Amount: 360, Status: "completed", Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	}, nil
}

func TestNormalizePeriod(t *testing.T) {
	t.Parallel()

	tests := map[string]string{"": "all", "month": "month", " WEEK ": "week", "year": "all"}
	for raw, want := range tests {
		if got := normalizePeriod(raw); got != want {
			t.Fatalf("normalizePeriod(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestIncomePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path       string
		wantPeriod string
		activeHref string
	}{
		{path: "/user/income", wantPeriod: "all", activeHref: `href="/user/income" class="active"`},
		{path: "/user/income?period=month", wantPeriod: "month", activeHref: `href="/user/income?period=month" class="active"`},
		{path: "/user/income?period=bogus", wantPeriod: "all", activeHref: `href="/user/income" class="active"`},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			gateway := fakeGateway{periods: make(chan string, 1)}
			mounted, err := NewWithGateway(gateway, module.Dependencies{}).Mount()
			if err != nil {
				t.Fatalf("Mount() error = %v", err)
			}
			rr := httptest.NewRecorder()
			mounted.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if got := <-gateway.periods; got != tc.wantPeriod {
				t.Fatalf("period = %q, want %q", got, tc.wantPeriod)
			}
			body := rr.Body.String()
			for _, want := range []string{tc.activeHref, "₹48,000", "₹12,000", "Direct referral bonus"} {
				if !strings.Contains(body, want) {
					t.Fatalf("body missing %q: %q", want, body)
				}
			}
		})
	}
}
