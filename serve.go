package relaybridge

import (
	"io"
	"net/http"

	"github.com/relaybridge/relaybridge/internal/logging"
)

const maxRequestBodyBytes = 32 * 1024 * 1024

// ServeHTTP implements the catch-all proxied surface: auth admission,
// streaming detection, then dispatch to the buffered or streaming cascade.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := logging.TraceIDFromContext(r.Context())
	log := logging.FromContext(r.Context())

	if !g.authGate.Admit(r) {
		log.Warn("auth_failed", "reason", "access token not present in any header")
		writeUnauthorized(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		http.Error(w, "request body unreadable", http.StatusBadRequest)
		return
	}
	r.Body.Close()

	stream := detectStreaming(r.Header.Get("Content-Type"), body)

	log.Info("request_start", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery, "stream", stream)

	if stream {
		g.forwardStream(w, r, reqID, body)
		return
	}
	g.forwardBuffered(w, r, reqID, body)
}
