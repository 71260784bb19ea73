package relaybridge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/relaybridge/relaybridge/internal/authgate"
	"github.com/relaybridge/relaybridge/internal/awssig"
	"github.com/relaybridge/relaybridge/internal/oauthcred"
)

// credentialSources holds the long-lived, per-provider credential helpers
// that outlive any single request: an OAuth2 token source (auto-refreshed)
// or an AWS SigV4 signer. Built once at Gateway construction from Config.
type credentialSources struct {
	oauth  map[string]*oauthcred.Source
	awsSig map[string]*awssig.Signer
}

func newCredentialSources(providers []Provider) *credentialSources {
	cs := &credentialSources{
		oauth:  make(map[string]*oauthcred.Source),
		awsSig: make(map[string]*awssig.Signer),
	}
	for _, p := range providers {
		switch p.CredentialMode {
		case CredentialOAuth2:
			if p.OAuth2 != nil {
				cs.oauth[p.Name] = oauthcred.New(p.OAuth2.TokenURL, p.OAuth2.ClientID, p.OAuth2.ClientSecret, p.OAuth2.Scopes)
			}
		case CredentialAWSSigV4:
			if p.AWSSigV4 != nil {
				cs.awsSig[p.Name] = awssig.New(
					p.AWSSigV4.AccessKeyID, p.AWSSigV4.SecretAccessKey, p.AWSSigV4.SessionToken,
					p.AWSSigV4.Service, p.AWSSigV4.Region,
				)
			}
		}
	}
	return cs
}

// apply substitutes the outbound credential for provider onto req,
// dispatching on the provider's configured CredentialMode. body is the
// already-buffered request body, needed for AWS SigV4's payload hash; the
// serve path buffers the body up front on both the buffered and streaming
// cascades (the latter needs it anyway to sniff "stream":true), so it is
// always available here.
func (cs *credentialSources) apply(ctx context.Context, req *http.Request, p Provider, gate *authgate.Gate, body []byte) error {
	switch p.CredentialMode {
	case CredentialOAuth2:
		src, ok := cs.oauth[p.Name]
		if !ok {
			return fmt.Errorf("no oauth2 token source configured for provider %q", p.Name)
		}
		token, err := src.Token(ctx)
		if err != nil {
			return fmt.Errorf("oauth2 token for provider %q: %w", p.Name, err)
		}
		gate.RewriteCredential(req, token)
		return nil
	case CredentialAWSSigV4:
		signer, ok := cs.awsSig[p.Name]
		if !ok {
			return fmt.Errorf("no aws sigv4 signer configured for provider %q", p.Name)
		}
		return signer.Sign(ctx, req, body)
	default:
		gate.RewriteCredential(req, p.UpstreamToken)
		return nil
	}
}
