// Package requestmeta provides normalized request metadata helpers.
package requestmeta

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Policy controls how much of the proxy-supplied request metadata is trusted.
//
// TrustProxy must be explicitly enabled for X-Forwarded-Proto and
// X-Forwarded-For to be considered.
type Policy struct {
	TrustProxy bool
}

// IsHTTPS reports whether a request should be treated as HTTPS without
// trusting proxy headers.
func IsHTTPS(r *http.Request) bool {
	return Policy{}.IsHTTPS(r)
}

// HasSameOriginProof reports whether Origin or Referer proves same-origin
// without trusting proxy headers.
func HasSameOriginProof(r *http.Request) bool {
	return Policy{}.HasSameOriginProof(r)
}

// IsHTTPS reports whether a request should be treated as HTTPS.
func (p Policy) IsHTTPS(r *http.Request) bool {
	return p.scheme(r) == "https"
}

// HasSameOriginProof reports whether the Origin header, or the Referer when
// Origin is absent, names the same scheme, host, and port as the request.
func (p Policy) HasSameOriginProof(r *http.Request) bool {
	if r == nil {
		return false
	}
	scheme := p.scheme(r)
	host, port := splitHost(r.Host)
	if host == "" && r.URL != nil {
		host, port = splitHost(r.URL.Host)
	}
	if host == "" {
		return false
	}
	if port == "" {
		port = defaultPort(scheme)
	}
	claimed := strings.TrimSpace(r.Header.Get("Origin"))
	if claimed == "" {
		claimed = strings.TrimSpace(r.Header.Get("Referer"))
	}
	if claimed == "" {
		return false
	}
	return sameOrigin(claimed, scheme, host, port)
}

// ClientIP returns the best-effort client address used for throttling.
func (p Policy) ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if p.TrustProxy {
		if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func (p Policy) scheme(r *http.Request) string {
	if r == nil {
		return ""
	}
	if p.TrustProxy {
		if forwarded := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); forwarded == "http" || forwarded == "https" {
			return forwarded
		}
	}
	if r.URL != nil {
		if scheme := strings.ToLower(r.URL.Scheme); scheme == "http" || scheme == "https" {
			return scheme
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func sameOrigin(raw string, scheme string, host string, port string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	claimedScheme := strings.ToLower(parsed.Scheme)
	if claimedScheme == "" || claimedScheme != scheme {
		return false
	}
	if strings.ToLower(parsed.Hostname()) != host {
		return false
	}
	claimedPort := parsed.Port()
	if claimedPort == "" {
		claimedPort = defaultPort(claimedScheme)
	}
	return claimedPort != "" && claimedPort == port
}

func defaultPort(scheme string) string {
	switch scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	default:
		return ""
	}
}

func splitHost(rawHost string) (string, string) {
	parsed, err := url.Parse("//" + strings.TrimSpace(rawHost))
	if err != nil {
		return "", ""
	}
	return strings.ToLower(parsed.Hostname()), parsed.Port()
}
