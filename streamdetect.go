package relaybridge

import (
	"encoding/json"
	"mime"
)

// detectStreaming reports whether the inbound request should take the
// streaming forward path: content-type is application/json and the body
// has a top-level "stream": true field. Any parse failure or absence of
// the field defaults to the buffered path.
func detectStreaming(contentType string, body []byte) bool {
	if !isJSONContentType(contentType) {
		return false
	}
	var probe struct {
		Stream bool `json:"stream"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.Stream
}

func isJSONContentType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json"
}

// rewriteModelField rewrites a JSON body's top-level "model" field to
// override, returning the rewritten bytes. Used only on the buffered path
// for providers with a model_override configured; the streaming path
// forwards the request body unchanged.
func rewriteModelField(body []byte, override string) []byte {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return body
	}
	if _, ok := doc["model"]; !ok {
		return body
	}
	rewritten, err := json.Marshal(override)
	if err != nil {
		return body
	}
	doc["model"] = rewritten
	out, err := json.Marshal(doc)
	if err != nil {
		return body
	}
	return out
}
