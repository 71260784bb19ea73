package relaybridge

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/relaybridge/relaybridge/internal/authgate"
	"github.com/relaybridge/relaybridge/internal/classify"
	"github.com/relaybridge/relaybridge/internal/logging"
)

const maxErrorBodyBytes = 64 * 1024

// forwardBuffered reads the request body fully into memory and attempts
// providers in the selector's order, returning the first non-failure
// response. If the sequence is exhausted, it returns a 502 describing
// which providers were tried and the last error.
func (g *Gateway) forwardBuffered(w http.ResponseWriter, r *http.Request, reqID string, body []byte) {
	plan := g.selector.Select(g.ProviderNames())
	log := logging.FromContext(r.Context())

	var tried []string
	var last lastError
	attempt := 0

	for _, name := range plan.Order() {
		if !plan.Eligible(name) {
			continue
		}
		attempt++
		p := g.byName[name]
		tried = append(tried, name)
		log.Info("request_forward", "provider", name, "target_url", p.BaseURL, "attempt", attempt)

		outboundBody := body
		if p.ModelOverride != "" {
			outboundBody = rewriteModelField(body, p.ModelOverride)
		}

		out, err := buildOutboundRequest(r, p, outboundBody, g.authGate, g.creds)
		if err != nil {
			last = lastError{Provider: name, ErrorType: string(classify.LabelUnknown), ErrorMsg: err.Error()}
			g.recordFailure(r.Context(), reqID, name, last.ErrorType, last.ErrorMsg, 0, 0)
			continue
		}

		attemptCtx, cancel := context.WithTimeout(r.Context(), g.config.Gateway.RequestTimeout)
		start := time.Now()
		resp, err := g.httpClient.Do(out.WithContext(attemptCtx))
		dur := time.Since(start)

		if err != nil {
			cancel()
			if classify.IsCancellation(r.Context(), attemptCtx, err) {
				return
			}
			outcome := classify.Transport(attemptCtx, err)
			last = lastError{Provider: name, ErrorType: string(outcome.Label), ErrorMsg: err.Error()}
			g.recordFailure(r.Context(), reqID, name, string(outcome.Label), err.Error(), 0, dur)
			continue
		}

		outcome := classify.Status(resp.StatusCode)
		if outcome.Verdict == classify.Failure {
			errMsg := readErrorBody(resp)
			resp.Body.Close()
			cancel()
			last = lastError{Provider: name, ErrorType: string(outcome.Label), ErrorMsg: errMsg}
			g.recordFailure(r.Context(), reqID, name, string(outcome.Label), errMsg, resp.StatusCode, dur)
			continue
		}

		g.recordSuccess(r.Context(), reqID, name, resp.StatusCode, dur)

		copyResponseHeaders(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)
		resp.Body.Close()
		cancel()
		return
	}

	log.Error("all_providers_failed", "error_type", last.ErrorType, "error_msg", last.ErrorMsg)
	writeAllProvidersFailed(w, tried, last)
}

// readErrorBody reads a failing upstream response body (bounded, gzip-aware)
// for the 502 summary's last_error.error_msg.
func readErrorBody(resp *http.Response) string {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		if gz, err := gzip.NewReader(resp.Body); err == nil {
			defer gz.Close()
			reader = gz
		}
	}
	data, _ := io.ReadAll(io.LimitReader(reader, maxErrorBodyBytes))
	return string(bytes.TrimSpace(data))
}

func copyResponseHeaders(dst, src http.Header) {
	authgate.StripHopByHop(src)
	for k, values := range src {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
}
