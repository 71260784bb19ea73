// Package oauthcred provides a provider credential mode for upstreams that
// front their API with OAuth2 client-credentials rather than a static
// bearer token: the outbound credential is a live, auto-refreshed access
// token pulled from a golang.org/x/oauth2/clientcredentials.Config.
package oauthcred

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Source vends the current access token for one provider's OAuth2
// client-credentials grant, refreshing it transparently on expiry. The
// reusing oauth2.TokenSource returned by Config.TokenSource (itself safe
// for concurrent use) caches the token until it is near expiry, so a fresh
// round trip to the token endpoint only happens on the first call and on
// refresh, not on every request.
type Source struct {
	src oauth2.TokenSource
}

// New builds a Source for the given token endpoint, client credentials, and
// scopes. Any of scopes may be nil/empty when the provider does not need
// scoped tokens.
func New(tokenURL, clientID, clientSecret string, scopes []string) *Source {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return &Source{src: cfg.TokenSource(context.Background())}
}

// Token returns a valid bearer access token, fetching or refreshing it as
// needed. The returned string never includes a "Bearer " prefix; callers
// combine it with the Auth Gate's substitution step the same way a static
// upstream_token would be combined.
func (s *Source) Token(ctx context.Context) (string, error) {
	tok, err := s.src.Token()
	if err != nil {
		return "", fmt.Errorf("fetch oauth2 client-credentials token: %w", err)
	}
	return tok.AccessToken, nil
}
