package web

// envelope.go provides the JSON envelope helpers shared by all
// endpoints except the company information endpoint, which carries its
// own numeric error taxonomy (see company.go).

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rorycl/bizmanager/db"
)

// envelope is the JSON body for every non-company response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON marshals an envelope to the response writer.
func (web *WebApp) writeJSON(w http.ResponseWriter, status int, e envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		web.log.Error("response encoding error", "error", err)
	}
}

// respond writes a success envelope.
func (web *WebApp) respond(w http.ResponseWriter, status int, message string, data any) {
	web.writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// clientError writes a failure envelope for a client-side problem.
func (web *WebApp) clientError(w http.ResponseWriter, message string, status int) {
	if message == "" {
		message = http.StatusText(status)
	}
	web.writeJSON(w, status, envelope{Success: false, Message: message})
}

// serverError logs the underlying error and writes a generic failure
// envelope. The error detail stays on the server side.
func (web *WebApp) serverError(w http.ResponseWriter, r *http.Request, err error) {
	web.log.Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
	web.writeJSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Message: http.StatusText(http.StatusInternalServerError),
	})
}

// storeError maps database sentinel errors to client responses and
// everything else to a server error.
func (web *WebApp) storeError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		web.clientError(w, notFoundMessage, http.StatusNotFound)
	case errors.Is(err, db.ErrConflict):
		web.clientError(w, "record conflicts with an existing record", http.StatusConflict)
	default:
		web.serverError(w, r, err)
	}
}

// decodeJSONBody decodes a JSON request body into dst, reporting
// malformed bodies as client errors. The caller passes a pointer.
func (web *WebApp) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		web.clientError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
