// Package relaybridge implements the forwarding engine: provider
// selection with half-open probing, the per-provider circuit breaker,
// the failover cascade for both buffered and streaming requests,
// authentication-token rewriting, and classification of upstream
// outcomes.
package relaybridge

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/relaybridge/relaybridge/internal/authgate"
	"github.com/relaybridge/relaybridge/internal/circuitbreaker"
	"github.com/relaybridge/relaybridge/internal/logging"
	"github.com/relaybridge/relaybridge/internal/metrics"
	"github.com/relaybridge/relaybridge/internal/requestlog"
	"github.com/relaybridge/relaybridge/internal/selector"
)

// Gateway wires the core subsystems into an http.Handler.
type Gateway struct {
	config       Config
	providers    []Provider
	byName       map[string]Provider
	registry     *circuitbreaker.Registry
	selector     *selector.Selector
	authGate     *authgate.Gate
	creds        *credentialSources
	httpClient   *http.Client
	streamClient *http.Client
	requestLog   requestlog.Writer
}

// New builds a Gateway from a loaded, validated Config. requestLog may be
// requestlog.NoopWriter{} when no audit log is configured.
func New(cfg Config, requestLog requestlog.Writer) *Gateway {
	names := make([]string, len(cfg.Providers))
	byName := make(map[string]Provider, len(cfg.Providers))
	for i, p := range cfg.Providers {
		names[i] = p.Name
		byName[p.Name] = p
	}

	registry := circuitbreaker.NewRegistry(names, cfg.Gateway.CircuitBreaker.FailureThreshold, cfg.Gateway.CircuitBreaker.ResetTimeout)

	// The streaming client bounds only the connect/header wait (via
	// Transport.ResponseHeaderTimeout); the body-read phase is intentionally
	// left unbounded beyond idle-read errors, per the streaming commit
	// boundary contract.
	streamTransport := &http.Transport{
		ResponseHeaderTimeout: cfg.Gateway.RequestTimeout,
		DialContext:           (&net.Dialer{Timeout: cfg.Gateway.RequestTimeout}).DialContext,
	}

	return &Gateway{
		config:    cfg,
		providers: cfg.Providers,
		byName:    byName,
		registry:  registry,
		selector:  selector.New(registry, cfg.Gateway.CircuitBreaker.ProbeProbability, nil),
		authGate:  authgate.New(cfg.Gateway.AccessToken),
		creds:     newCredentialSources(cfg.Providers),
		httpClient: &http.Client{
			Timeout: 0, // per-attempt deadlines are applied via context, not the client-wide timeout
		},
		streamClient: &http.Client{Transport: streamTransport},
		requestLog:   requestLog,
	}
}

// Registry exposes the breaker registry for the admin and CLI surfaces.
func (g *Gateway) Registry() *circuitbreaker.Registry { return g.registry }

// ProviderNames returns the configured providers in priority order.
func (g *Gateway) ProviderNames() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name
	}
	return names
}

// recordBreakerMetric syncs the circuit breaker state gauge for one
// provider after an update.
func (g *Gateway) recordBreakerMetric(name string) {
	if g.registry.For(name).IsOpen() {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(1)
	} else {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	}
}

func (g *Gateway) observeAttempt(ctx context.Context, reqID, provider, verdict, errorLabel string, statusCode int, dur time.Duration) {
	metrics.CascadeAttemptsTotal.WithLabelValues(provider, verdict).Inc()
	metrics.ForwardDuration.WithLabelValues(provider).Observe(dur.Seconds())
	_ = g.requestLog.Write(ctx, requestlog.Entry{
		ReqID:      reqID,
		Provider:   provider,
		Verdict:    verdict,
		ErrorLabel: errorLabel,
		StatusCode: statusCode,
		DurationMS: dur.Milliseconds(),
	})
}

// recordFailure updates provider's breaker, logs request_failure and, on a
// closed-to-open transition, circuit_breaker "tripped".
func (g *Gateway) recordFailure(ctx context.Context, reqID, provider, errorLabel, errMsg string, statusCode int, dur time.Duration) {
	breaker := g.registry.For(provider)
	wasOpen := breaker.IsOpen()
	breaker.RecordFailure()
	g.recordBreakerMetric(provider)

	log := logging.FromContext(ctx)
	log.Error("request_failure", "provider", provider, "error_type", errorLabel, "error_msg", errMsg, "status", statusCode, "duration_ms", dur.Milliseconds())

	if snap := breaker.Snapshot(); !wasOpen && snap.IsOpen {
		log.Warn("circuit_breaker", "provider", provider, "action", "tripped", "failure_count", snap.ConsecutiveFailures)
	}

	g.observeAttempt(ctx, reqID, provider, "failure", errorLabel, statusCode, dur)
}

// recordSuccess updates provider's breaker, logs request_success and, on an
// open-to-closed transition via a successful probe, circuit_breaker
// "recovered".
func (g *Gateway) recordSuccess(ctx context.Context, reqID, provider string, statusCode int, dur time.Duration) {
	breaker := g.registry.For(provider)
	wasOpen := breaker.IsOpen()
	breaker.RecordSuccess()
	g.recordBreakerMetric(provider)

	log := logging.FromContext(ctx)
	log.Info("request_success", "provider", provider, "status", statusCode, "duration_ms", dur.Milliseconds())

	if wasOpen {
		log.Warn("circuit_breaker", "provider", provider, "action", "recovered", "failure_count", 0)
	}

	g.observeAttempt(ctx, reqID, provider, "success", "", statusCode, dur)
}
