package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/slack-go/slack"
)

// statusFor maps a failure kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ladder.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ladder.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ladder.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ladder.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ladder.ErrDeadlinePassed):
		return http.StatusGone
	case errors.Is(err, ladder.ErrConcurrentUpdate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError writes err as {"error": reason}. Unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		writeJSONError(w, status, "internal error")
		return
	}
	log.Debug("Request rejected", "status", status, "reason", ladder.Reason(err))
	writeJSONError(w, status, ladder.Reason(err))
}

func writeJSONError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// pathInt parses a positive integer path value.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil || v < 1 {
		writeJSONError(w, http.StatusBadRequest, name+" must be a positive number")
		return 0, false
	}
	return v, true
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}
