package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/msgpack"

// envelope is the response shape shared by every risk endpoint.
type envelope struct {
	Data     any            `json:"data" msgpack:"data"`
	Metadata map[string]any `json:"metadata" msgpack:"metadata"`
}

func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, contentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// respond writes the envelope as msgpack when the client asks for it and as
// JSON otherwise. The body is encoded before the status is sent, so an
// encoding failure still reaches the client as an error.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, data any, metadata map[string]any) {
	body := envelope{Data: data, Metadata: metadata}

	if wantsMsgpack(r) {
		b, err := msgpack.Marshal(body)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
			http.Error(w, "encoding error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		_, _ = w.Write(b)
		return
	}

	b, err := json.Marshal(body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
