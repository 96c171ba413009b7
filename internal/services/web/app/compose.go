package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/avasar/portal/internal/services/web/guard"
	module "github.com/avasar/portal/internal/services/web/module"
	"github.com/avasar/portal/internal/services/web/platform/requestmeta"
	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
	"github.com/avasar/portal/internal/services/web/routepath"
	"github.com/avasar/portal/internal/services/web/session"
)

// ComposeInput carries module groups and shared composition contracts.
type ComposeInput struct {
	PublicModules []module.Module
	UserModules   []module.Module
	AdminModules  []module.Module
	// ResolveSession returns the memoized request session. Nil means every
	// request is anonymous.
	ResolveSession func(*http.Request) session.Session
	Cookies        sessioncookie.Jar
	// Checking renders the interim page shown while a session is validated.
	Checking    http.Handler
	RequestMeta requestmeta.Policy
}

// group is one set of modules sharing an access role and a prefix policy.
type group struct {
	name     string
	required session.Role
	modules  []module.Module
	allows   func(prefix string) bool
}

// Compose builds a root HTTP handler from module groups.
func Compose(input ComposeInput) (http.Handler, error) {
	root := http.NewServeMux()
	seen := make(map[string]string)

	groups := []group{
		{name: "public", required: session.RoleNone, modules: input.PublicModules, allows: isPublicPrefix},
		{name: "user", required: session.RoleUser, modules: input.UserModules, allows: under(routepath.UserPrefix)},
		{name: "admin", required: session.RoleAdmin, modules: input.AdminModules, allows: under(routepath.AdminPrefix)},
	}
	for _, g := range groups {
		wrap := wrapGroup(input, g.required)
		for _, feature := range g.modules {
			if feature == nil {
				return nil, fmt.Errorf("%s module is nil", g.name)
			}
			if err := mountGroupModule(root, g, feature, seen, wrap); err != nil {
				return nil, err
			}
		}
	}
	return root, nil
}

func mountGroupModule(root *http.ServeMux, g group, feature module.Module, seen map[string]string, wrap func(http.Handler) http.Handler) error {
	mount, prefix, err := resolveMount(feature)
	if err != nil {
		return err
	}
	if !g.allows(prefix) {
		return fmt.Errorf("module %q has prefix %q outside the %s group", feature.ID(), prefix, g.name)
	}
	if err := mountModule(root, feature, mount, prefix, seen, wrap); err != nil {
		return err
	}
	if alias := slashlessPrefixAlias(prefix); alias != "" {
		if err := mountModule(root, feature, mount, alias, seen, wrap); err != nil {
			return err
		}
	}
	return nil
}

func mountModule(
	root *http.ServeMux,
	feature module.Module,
	mount module.Mount,
	prefix string,
	seen map[string]string,
	wrap func(http.Handler) http.Handler,
) error {
	if previous, ok := seen[prefix]; ok {
		return fmt.Errorf("module %q duplicates prefix %q owned by module %q", feature.ID(), prefix, previous)
	}
	seen[prefix] = feature.ID()

	handler := mount.Handler
	if wrap != nil {
		handler = wrap(handler)
	}
	root.Handle(prefix, handler)
	return nil
}

func isPublicPrefix(prefix string) bool {
	return !under(routepath.UserPrefix)(prefix) && !under(routepath.AdminPrefix)(prefix)
}

func under(base string) func(string) bool {
	return func(prefix string) bool {
		return strings.HasPrefix(prefix, base)
	}
}

func resolveMount(feature module.Module) (module.Mount, string, error) {
	mount, err := feature.Mount()
	if err != nil {
		return module.Mount{}, "", fmt.Errorf("mount module %q: %w", feature.ID(), err)
	}
	prefix := mount.Prefix
	if err := validatePrefix(prefix); err != nil {
		return module.Mount{}, "", fmt.Errorf("mount module %q has invalid prefix %q: %w", feature.ID(), mount.Prefix, err)
	}
	if mount.Handler == nil {
		return module.Mount{}, "", fmt.Errorf("mount module %q: handler is required", feature.ID())
	}
	return mount, prefix, nil
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if strings.TrimSpace(prefix) != prefix {
		return fmt.Errorf("prefix must not include surrounding whitespace")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("prefix must begin with /")
	}
	if !strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("prefix must end with /")
	}
	return nil
}

// slashlessPrefixAlias returns "/user" for "/user/" so the bare path reaches
// the module instead of the root fallback. The root prefix has no alias.
func slashlessPrefixAlias(prefix string) string {
	return strings.TrimSuffix(prefix, "/")
}

func wrapGroup(input ComposeInput, required session.Role) func(http.Handler) http.Handler {
	guardWrap := guard.Middleware(guard.Config{
		Required: required,
		Resolve:  input.ResolveSession,
		Cookies:  input.Cookies,
		Checking: input.Checking,
	})
	csrfWrap := requireCookieSessionSameOrigin(input.RequestMeta)
	return func(next http.Handler) http.Handler {
		return guardWrap(csrfWrap(next))
	}
}

func requireCookieSessionSameOrigin(policy requestmeta.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutationMethod(r) || !hasSessionCookie(r) {
				next.ServeHTTP(w, r)
				return
			}
			if !policy.HasSameOriginProof(r) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMutationMethod(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func hasSessionCookie(r *http.Request) bool {
	_, ok := sessioncookie.ReadSession(r)
	return ok
}
