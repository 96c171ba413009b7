package modules

import (
	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/modules/admin"
	"github.com/avasar/portal/internal/services/web/modules/dashboard"
	"github.com/avasar/portal/internal/services/web/modules/income"
	"github.com/avasar/portal/internal/services/web/modules/profile"
	"github.com/avasar/portal/internal/services/web/modules/public"
	"github.com/avasar/portal/internal/services/web/modules/publicauth"
	"github.com/avasar/portal/internal/services/web/modules/rank"
	"github.com/avasar/portal/internal/services/web/modules/registration"
	"github.com/avasar/portal/internal/services/web/modules/team"
)

// PublicModules returns the marketing pages and the guest auth flows.
func PublicModules(deps module.Dependencies) []Module {
	return []Module{
		public.New(deps),
		publicauth.NewLogin(deps),
		publicauth.NewLogout(deps),
		publicauth.NewForgotPassword(deps),
		registration.NewRegister(deps),
		registration.NewOTP(deps),
	}
}

// UserModules returns the signed-in member area.
func UserModules(deps module.Dependencies) []Module {
	return []Module{
		dashboard.New(deps),
		profile.New(deps),
		team.New(deps),
		income.New(deps),
		rank.New(deps),
	}
}

// AdminModules returns the administrator area.
func AdminModules(deps module.Dependencies) []Module {
	return []Module{
		admin.New(deps),
	}
}

// Unhealthy returns the IDs of modules that report they cannot serve.
func Unhealthy(groups ...[]Module) []string {
	var out []string
	for _, group := range groups {
		for _, m := range group {
			if reporter, ok := m.(module.HealthReporter); ok && !reporter.Healthy() {
				out = append(out, m.ID())
			}
		}
	}
	return out
}
