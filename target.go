package relaybridge

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/relaybridge/relaybridge/internal/authgate"
)

// targetURL resolves the outbound URL for one attempt against provider p,
// given the inbound request's path and raw query. p.BaseURL has no
// trailing slash (enforced at config validation).
func targetURL(p Provider, inboundPath, rawQuery string) (*url.URL, error) {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider %q base_url: %w", p.Name, err)
	}
	base.Path = base.Path + inboundPath
	base.RawQuery = rawQuery
	return base, nil
}

// buildOutboundRequest constructs the request to send to provider p for
// one cascade attempt: method and path unchanged, headers forwarded minus
// hop-by-hop and with the client credential substituted, body as given.
func buildOutboundRequest(r *http.Request, p Provider, body []byte, gate *authgate.Gate, creds *credentialSources) (*http.Request, error) {
	target, err := targetURL(p, r.URL.Path, r.URL.RawQuery)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	out, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build outbound request to %q: %w", p.Name, err)
	}
	out.Header = r.Header.Clone()
	authgate.StripHopByHop(out.Header)
	authgate.RetargetHost(out, target.Scheme, target.Host)

	if err := creds.apply(r.Context(), out, p, gate, body); err != nil {
		return nil, err
	}

	return out, nil
}

// providerBaseURLHasTrailingSlash reports a config authoring mistake; it is
// the one definition of "trailing slash" that config_load.go's validation
// uses.
func providerBaseURLHasTrailingSlash(baseURL string) bool {
	return strings.HasSuffix(baseURL, "/")
}
