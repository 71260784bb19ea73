// Package authgate implements inbound token admission and outbound
// credential substitution for the proxy: checking that a caller presented
// the gateway's configured access token, then rewriting that same header
// value to whichever credential the selected provider requires before the
// request leaves the process.
package authgate

import (
	"net/http"
	"strings"
)

// hopByHop headers are connection-scoped and must never be forwarded to an
// upstream provider (RFC 7230 §6.1), plus the headers chi/net-http add for
// proxying that the upstream has no use for.
var hopByHop = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Transfer-Encoding",
	"TE",
	"Trailers",
	"Upgrade",
}

// Gate holds the gateway's own access token, read once at startup.
type Gate struct {
	accessToken string
}

// New builds a Gate. An empty accessToken means no inbound admission check
// is performed (every request is admitted) — useful for local development,
// never recommended for a production config.
func New(accessToken string) *Gate {
	return &Gate{accessToken: accessToken}
}

// Admit reports whether the inbound request carries the gateway's access
// token in any header. The match is deliberately header-name-agnostic: it
// scans every header value rather than requiring a specific header name,
// because callers may reasonably present it as Authorization, X-API-Key,
// or a vendor-specific header depending on which client SDK they use.
func (g *Gate) Admit(r *http.Request) bool {
	if g.accessToken == "" {
		return true
	}
	for _, values := range r.Header {
		for _, v := range values {
			if headerValueMatches(v, g.accessToken) {
				return true
			}
		}
	}
	return false
}

func headerValueMatches(headerValue, token string) bool {
	if headerValue == token {
		return true
	}
	if trimmed := strings.TrimPrefix(headerValue, "Bearer "); trimmed == token {
		return true
	}
	return false
}

// RewriteCredential replaces every header value equal to the gateway access
// token (including a "Bearer <token>" value) with upstreamToken in the same
// position, preserving any "Bearer " prefix. This is how a caller's single
// gateway credential becomes the correct per-provider upstream credential
// without the caller ever seeing or needing the real one.
func (g *Gate) RewriteCredential(r *http.Request, upstreamToken string) {
	if g.accessToken == "" {
		return
	}
	for name, values := range r.Header {
		for i, v := range values {
			if v == g.accessToken {
				r.Header[name][i] = upstreamToken
			} else if strings.TrimPrefix(v, "Bearer ") == g.accessToken && v != g.accessToken {
				r.Header[name][i] = "Bearer " + upstreamToken
			}
		}
	}
}

// StripHopByHop deletes connection-scoped headers that must not be
// forwarded to an upstream provider.
func StripHopByHop(h http.Header) {
	for _, name := range hopByHop {
		h.Del(name)
	}
}

// RetargetHost rewrites the request's URL and Host to point at host,
// mirroring what httputil.ReverseProxy's Director does for a single fixed
// upstream, generalized to a per-attempt target chosen by the caller.
func RetargetHost(r *http.Request, scheme, host string) {
	r.URL.Scheme = scheme
	r.URL.Host = host
	r.Host = host
}
