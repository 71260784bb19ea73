// Package classify maps the outcome of one upstream attempt into the
// success/failure verdict the circuit breaker consumes.
package classify

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
)

// Verdict is the result of classifying one upstream attempt.
type Verdict int

const (
	// Success: transport completed and the response status is < 500.
	// 4xx counts as success here — it is a client error to be passed
	// through verbatim, not a reason to fail over.
	Success Verdict = iota
	Failure
)

// Label categorizes a Failure verdict for logging and the final 502 body.
type Label string

const (
	LabelNone             Label = ""
	LabelTimeout          Label = "timeout"
	LabelConnectionError  Label = "connection_error"
	LabelHTTPError        Label = "http_error"
	LabelUnknown          Label = "unknown"
)

// Outcome is the full result of classifying one attempt.
type Outcome struct {
	Verdict Verdict
	Label   Label
	// StatusCode is 0 when the attempt never received a response (transport
	// error or timeout before any status line).
	StatusCode int
	// Err is the underlying transport error, if any.
	Err error
}

// Transport classifies a transport-level error returned by an http.Client
// call (no response was received, or headers never arrived). ctx is not
// consulted: the caller filters out client-initiated cancellations
// (IsCancellation) before calling Transport, so a deadline error that
// reaches here is classified as a provider timeout.
func Transport(ctx context.Context, err error) Outcome {
	if err == nil {
		return Outcome{Verdict: Success}
	}

	// Client-initiated cancellation is not attributed to the provider; the
	// caller (forward engine) is responsible for checking ctx.Err() against
	// the parent request context before calling Transport, so that only a
	// deadline firing on the per-attempt context reaches here as a timeout.
	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Verdict: Failure, Label: LabelTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Verdict: Failure, Label: LabelTimeout, Err: err}
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return Outcome{Verdict: Failure, Label: LabelConnectionError, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Outcome{Verdict: Failure, Label: LabelConnectionError, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Outcome{Verdict: Failure, Label: LabelConnectionError, Err: err}
	}

	return Outcome{Verdict: Failure, Label: LabelUnknown, Err: err}
}

// Status classifies a received HTTP status code. Only called once a
// response was actually obtained (no transport error).
func Status(status int) Outcome {
	if status >= http.StatusInternalServerError {
		return Outcome{Verdict: Failure, Label: LabelHTTPError, StatusCode: status}
	}
	return Outcome{Verdict: Success, StatusCode: status}
}

// IsCancellation reports whether err represents the inbound client
// disconnecting rather than the per-attempt deadline firing. reqCtx is the
// original client request's context; attemptCtx is the per-attempt
// deadline-bound context derived from it.
func IsCancellation(reqCtx, attemptCtx context.Context, err error) bool {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// If the attempt's own deadline fired, attemptCtx.Err() is
	// DeadlineExceeded regardless of the parent; that is a provider-
	// attributable timeout, not a cancellation.
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return false
	}
	return errors.Is(reqCtx.Err(), context.Canceled)
}
