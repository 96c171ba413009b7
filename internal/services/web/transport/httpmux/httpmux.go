// Package httpmux mounts the portal's fixed routes onto the root mux.
package httpmux

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/avasar/portal/internal/services/web/routepath"
)

// staticCacheControl keeps assets cached briefly; they are not fingerprinted.
const staticCacheControl = "public, max-age=300"

// MountStatic wires the static asset route into the root mux.
func MountStatic(rootMux *http.ServeMux, staticFS fs.FS) {
	if rootMux == nil || staticFS == nil {
		return
	}
	handler := http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(staticFS)))
	rootMux.Handle(http.MethodGet+" "+routepath.StaticPrefix, WithStaticMime(handler))
}

// MountHealth wires the liveness probe, which answers body with 200.
func MountHealth(rootMux *http.ServeMux, body string) {
	if rootMux == nil {
		return
	}
	rootMux.HandleFunc(http.MethodGet+" "+routepath.Health, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(body))
	})
}

// MountPortal wires the composed page handler under root.
func MountPortal(rootMux *http.ServeMux, portal http.Handler) {
	if rootMux == nil || portal == nil {
		return
	}
	rootMux.Handle(routepath.Root, portal)
}

// WithStaticMime attaches explicit content types and cache headers for
// known static assets.
func WithStaticMime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch path := strings.ToLower(r.URL.Path); {
		case strings.HasSuffix(path, ".css"):
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case strings.HasSuffix(path, ".js"):
			w.Header().Set("Content-Type", "application/javascript")
		case strings.HasSuffix(path, ".svg"):
			w.Header().Set("Content-Type", "image/svg+xml")
		}
		w.Header().Set("Cache-Control", staticCacheControl)
		next.ServeHTTP(w, r)
	})
}
