package web

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/app"
	"github.com/avasar/portal/internal/services/web/handoff"
	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/modules"
	"github.com/avasar/portal/internal/services/web/otpflow"
	"github.com/avasar/portal/internal/services/web/platform/httpx"
	"github.com/avasar/portal/internal/services/web/platform/observability"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	"github.com/avasar/portal/internal/services/web/platform/ratelimit"
	"github.com/avasar/portal/internal/services/web/platform/requestmeta"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
	"github.com/avasar/portal/internal/services/web/platform/webctx"
	"github.com/avasar/portal/internal/services/web/session"
	"github.com/avasar/portal/internal/services/web/static"
	"github.com/avasar/portal/internal/services/web/storage"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
	"github.com/avasar/portal/internal/services/web/transport/httpmux"
)

// Defaults applied by NewHandler when a Config field is zero.
const (
	DefaultSessionMaxAge      = 7 * 24 * time.Hour
	DefaultRequestsPerMinute  = 20
	defaultHealthResponseBody = "ok"
	otpSecretSize             = 32
)

// Config defines the inputs for the portal HTTP server.
type Config struct {
	HTTPAddr string
	// APIBaseURL is the backend REST root, e.g. http://localhost:5000/api.
	// Empty runs the portal with every backend feature unavailable.
	APIBaseURL string
	// HTTPClient overrides the API transport.
	HTTPClient *http.Client
	// OTPSecret signs the OTP flow cookie. Empty generates a per-process key,
	// which invalidates in-flight flows on restart.
	OTPSecret         []byte
	HandoffTTL        time.Duration
	SessionMaxAge     time.Duration
	SessionCacheTTL   time.Duration
	RequestsPerMinute int
	TrustProxy        bool
	Logger            *log.Logger

	// Store selects the pending registration store: memory, sqlite, or redis.
	Store      string
	SQLitePath string
	RedisURL   string
	// PurgeInterval is how often the sqlite store drops expired records.
	PurgeInterval time.Duration
}

// NewHandler assembles the portal handler over store.
func NewHandler(cfg Config, store storage.PendingStore) (http.Handler, error) {
	if store == nil {
		return nil, errors.New("pending store is required")
	}
	cfg = withDefaults(cfg)

	var client *api.Client
	if base := strings.TrimSpace(cfg.APIBaseURL); base != "" {
		var err error
		client, err = api.New(base, cfg.HTTPClient)
		if err != nil {
			return nil, fmt.Errorf("init api client: %w", err)
		}
	}
	secret := cfg.OTPSecret
	if len(secret) == 0 {
		secret = make([]byte, otpSecretSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate otp secret: %w", err)
		}
	}

	policy := requestmeta.Policy{TrustProxy: cfg.TrustProxy}
	jar := sessioncookie.Jar{Policy: policy, SessionMaxAge: cfg.SessionMaxAge}
	otp, err := otpflow.New(secret, jar)
	if err != nil {
		return nil, fmt.Errorf("init otp flow: %w", err)
	}
	sessions := newSessionManager(client, cfg.SessionCacheTTL)

	deps := module.Dependencies{
		API:            client,
		Sessions:       sessions,
		Handoff:        handoff.New(store, jar, cfg.HandoffTTL),
		OTP:            otp,
		Limiter:        ratelimit.New(cfg.RequestsPerMinute),
		Cookies:        jar,
		RequestMeta:    policy,
		ResolveSession: webctx.Session,
	}

	publicModules := modules.PublicModules(deps)
	userModules := modules.UserModules(deps)
	adminModules := modules.AdminModules(deps)
	if down := modules.Unhealthy(publicModules, userModules, adminModules); len(down) > 0 {
		cfg.Logger.Printf("modules running without backend: %s", strings.Join(down, ", "))
	}

	root, err := app.BuildRootHandler(app.Config{
		Dependencies:  deps,
		PublicModules: publicModules,
		UserModules:   userModules,
		AdminModules:  adminModules,
		Checking:      checkingHandler(deps),
	})
	if err != nil {
		return nil, fmt.Errorf("compose modules: %w", err)
	}

	mux := http.NewServeMux()
	httpmux.MountStatic(mux, static.FS)
	httpmux.MountHealth(mux, defaultHealthResponseBody)
	httpmux.MountPortal(mux, root)

	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.RecoverPanic(cfg.Logger),
		observability.Tracing(),
		observability.RequestLogger(cfg.Logger),
		httpx.SecurityHeaders(),
		attachSession(sessions),
	), nil
}

func withDefaults(cfg Config) Config {
	if cfg.HandoffTTL <= 0 {
		cfg.HandoffTTL = handoff.DefaultTTL
	}
	if cfg.SessionMaxAge <= 0 {
		cfg.SessionMaxAge = DefaultSessionMaxAge
	}
	if cfg.SessionCacheTTL <= 0 {
		cfg.SessionCacheTTL = session.DefaultCacheTTL
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return cfg
}

func newSessionManager(client *api.Client, cacheTTL time.Duration) *session.Manager {
	if client == nil {
		return session.NewManager(nil, session.Config{CacheTTL: cacheTTL})
	}
	return session.NewManager(client, session.Config{CacheTTL: cacheTTL})
}

// attachSession memoizes the cookie session resolution for each request.
func attachSession(sessions *session.Manager) httpx.Middleware {
	resolve := func(r *http.Request) session.Session {
		token, ok := sessioncookie.ReadSession(r)
		if !ok {
			return session.Session{}
		}
		return sessions.Resolve(r.Context(), token)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, webctx.WithSessionResolver(r, resolve))
		})
	}
}

func checkingHandler(deps module.Dependencies) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := pagerender.NewBase(w, r, deps, webtemplates.AreaPublic, "web.checking.title")
		w.Header().Set("Cache-Control", "no-store")
		if err := pagerender.WriteFragment(w, r, http.StatusOK, webtemplates.View("page.checking", base)); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}
