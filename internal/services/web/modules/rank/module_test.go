package rank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avasar/portal/internal/services/web/api"
	module "github.com/avasar/portal/internal/services/web/module"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

type fakeGateway struct {
	summary api.RankSummary
}

func (f fakeGateway) Rank(context.Context, string) (api.RankSummary, error) {
	return f.summary, nil
}

func TestStanding(t *testing.T) {
	t.Parallel()

	reported := 42.0
	tests := []struct {
		name         string
		summary      api.RankSummary
		wantCurrent  string
		wantNext     string
		wantProgress int
		wantItems    int
	}{
		{
			name: "backend next rank",
			summary: api.RankSummary{
				CurrentRank:  "manager",
				NextRank:     &api.NextRank{Name: "Executive Manager", Requirements: map[string]float64{"directReferrals": 10, "teamSize": 100}},
				Achievements: map[string]float64{"directReferrals": 5, "teamSize": 100},
			},
			wantCurrent:  "Manager",
			wantNext:     "Executive Manager",
			wantProgress: 75,
			wantItems:    2,
		},
		{
			name:         "reported progress wins",
			summary:      api.RankSummary{CurrentRank: "Supervisor", Progress: &reported},
			wantCurrent:  "Supervisor",
			wantNext:     "Senior Supervisor",
			wantProgress: 42,
		},
		{
			name:        "top rank",
			summary:     api.RankSummary{CurrentRank: "Universal King"},
			wantCurrent: "Universal King",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var view webtemplates.RankView
			standing(&view, tc.summary)
			if view.CurrentName != tc.wantCurrent {
				t.Fatalf("CurrentName = %q, want %q", view.CurrentName, tc.wantCurrent)
			}
			if view.NextName != tc.wantNext {
				t.Fatalf("NextName = %q, want %q", view.NextName, tc.wantNext)
			}
			if view.Progress != tc.wantProgress {
				t.Fatalf("Progress = %d, want %d", view.Progress, tc.wantProgress)
			}
			if len(view.Requirements) != tc.wantItems {
				t.Fatalf("Requirements = %d, want %d", len(view.Requirements), tc.wantItems)
			}
		})
	}
}

func TestRankPageRenders(t *testing.T) {
	t.Parallel()

	gateway := fakeGateway{summary: api.RankSummary{
		CurrentRank:  "Eagle",
		NextRank:     &api.NextRank{Name: "Eagle Executive", Requirements: map[string]float64{"teamInvestment": 500000}},
		Achievements: map[string]float64{"teamInvestment": 250000},
	}}
	mounted, err := NewWithGateway(gateway, module.Dependencies{}).Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	rr := httptest.NewRecorder()
	mounted.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/user/rank", nil))
	body := rr.Body.String()
	for _, want := range []string{"Eagle Executive", "50% complete", "₹2,50,000", "International conference access"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %q", want, body)
		}
	}
}
