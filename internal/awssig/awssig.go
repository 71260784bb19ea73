// Package awssig provides a provider credential mode for upstreams that
// require request-level AWS SigV4 signing instead of a bearer header. The
// signer adds Authorization/X-Amz-* headers to the outbound request in
// place; it never rewrites the method, path, or body, keeping the
// verbatim-forwarding contract intact.
package awssig

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Signer signs outbound requests for one AWS service/region pair.
type Signer struct {
	creds   aws.CredentialsProvider
	signer  *v4.Signer
	service string
	region  string
}

// New builds a Signer from a static access key pair. service is the AWS
// service signing name (e.g. "bedrock"), region the AWS region the
// provider's base_url points at.
func New(accessKeyID, secretAccessKey, sessionToken, service, region string) *Signer {
	return &Signer{
		creds:   credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken),
		signer:  v4.NewSigner(),
		service: service,
		region:  region,
	}
}

// Sign computes the SHA-256 payload hash of body and signs r in place,
// adding the Authorization and X-Amz-Date headers. r.Body is not read: it
// is replaced with a fresh reader over body (and ContentLength set to
// match), so the request sends exactly the bytes that were hashed. Callers
// pass the body they already hold in memory.
func (s *Signer) Sign(ctx context.Context, r *http.Request, body []byte) error {
	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve aws credentials: %w", err)
	}

	hash := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(hash[:])

	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))

	if err := s.signer.SignHTTP(ctx, creds, r, payloadHash, s.service, s.region, time.Now()); err != nil {
		return fmt.Errorf("sign request with sigv4: %w", err)
	}
	return nil
}
