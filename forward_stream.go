package relaybridge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/relaybridge/relaybridge/internal/classify"
	"github.com/relaybridge/relaybridge/internal/logging"
)

// forwardStream is the streaming cascade. No response bytes reach the
// client until some provider's headers classify as success; once they do,
// the cascade is committed and any further body error is terminal.
func (g *Gateway) forwardStream(w http.ResponseWriter, r *http.Request, reqID string, body []byte) {
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

		out, err := buildOutboundRequest(r, p, body, g.authGate, g.creds)
		if err != nil {
			last = lastError{Provider: name, ErrorType: string(classify.LabelUnknown), ErrorMsg: err.Error()}
			g.recordFailure(r.Context(), reqID, name, last.ErrorType, last.ErrorMsg, 0, 0)
			continue
		}

		start := time.Now()
		resp, err := g.streamClient.Do(out)
		dur := time.Since(start)

		if err != nil {
			// No per-attempt deadline context exists on the streaming path
			// (only Transport.ResponseHeaderTimeout bounds the header
			// wait), so a cancellation is attributable to the client iff
			// the inbound request's own context was canceled.
			if errors.Is(err, context.Canceled) && r.Context().Err() == context.Canceled {
				return
			}
			outcome := classify.Transport(r.Context(), err)
			last = lastError{Provider: name, ErrorType: string(outcome.Label), ErrorMsg: err.Error()}
			g.recordFailure(r.Context(), reqID, name, string(outcome.Label), err.Error(), 0, dur)
			continue
		}

		outcome := classify.Status(resp.StatusCode)
		if outcome.Verdict == classify.Failure {
			errMsg := readErrorBody(resp)
			resp.Body.Close()
			last = lastError{Provider: name, ErrorType: string(outcome.Label), ErrorMsg: errMsg}
			g.recordFailure(r.Context(), reqID, name, string(outcome.Label), errMsg, resp.StatusCode, dur)
			continue
		}

		// Commit boundary: headers classify as success, so this response is
		// sent to the client regardless of what happens during body copy.
		g.recordSuccess(r.Context(), reqID, name, resp.StatusCode, dur)

		copyResponseHeaders(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)
		bodyErr := streamBody(w, resp.Body)
		resp.Body.Close()

		// A body-stream error is terminal — it never triggers failover, the
		// response headers are already committed — but it is still recorded
		// against the breaker for observability.
		if bodyErr != nil {
			outcome := classify.Transport(r.Context(), bodyErr)
			g.recordFailure(r.Context(), reqID, name, string(outcome.Label), bodyErr.Error(), resp.StatusCode, dur)
		}
		return
	}

	log.Error("all_providers_failed", "error_type", last.ErrorType, "error_msg", last.ErrorMsg)
	writeAllProvidersFailed(w, tried, last)
}

// streamBody copies the upstream body to the client chunk-at-a-time,
// flushing after every chunk so bytes reach the client as they arrive
// rather than waiting for a buffer to fill. Returns the read error that
// ended the copy, or nil on a clean EOF or a client-side write failure
// (neither is attributable to the provider).
func streamBody(w http.ResponseWriter, body io.Reader) error {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return nil
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
