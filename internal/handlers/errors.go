package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/timetable/internal/auth"
	"github.com/crucial707/timetable/internal/middleware"
	"github.com/crucial707/timetable/internal/models"
	"github.com/crucial707/timetable/internal/service"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

func writeOutcome(w http.ResponseWriter, status int, out models.Outcome) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(out)
}

// JSONOK sends a successful outcome with an optional data payload.
func JSONOK(w http.ResponseWriter, status int, message string, data any) {
	writeOutcome(w, status, models.Outcome{Message: message, Status: models.StatusOK, Data: data})
}

// JSONError sends a failed outcome with only a message.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeOutcome(w, status, models.Outcome{Message: message, Status: models.StatusFailed})
}

// JSONValidationError sends a failed outcome with field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	writeOutcome(w, status, models.Outcome{Message: message, Status: models.StatusFailed, Fields: fields})
}

// writeServiceError maps a service error to a status code. rejected is the message used
// for validation, conflict and not-found rejections of the current operation.
func writeServiceError(w http.ResponseWriter, err error, rejected string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		JSONValidationError(w, rejected, verr.Fields, http.StatusBadRequest)
	case errors.Is(err, service.ErrNothingToUpdate):
		JSONError(w, "update failed", http.StatusBadRequest)
	case errors.Is(err, service.ErrConflict):
		JSONError(w, rejected, http.StatusConflict)
	case errors.Is(err, service.ErrUserNotFound):
		JSONError(w, "user not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotFound):
		JSONError(w, rejected, http.StatusNotFound)
	case errors.Is(err, service.ErrIncorrectPassword):
		JSONError(w, "incorrect password", http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidCredentials):
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrTokenGeneration):
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
	default:
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// currentUser returns the authenticated username, answering 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		JSONError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return username, ok
}

// decodePatch reads a flat JSON object of field -> value for a sparse update.
// Strings and numbers are kept as text; other JSON types count as absent.
func decodePatch(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		}
	}
	return out, nil
}

// parsePeriod accepts a JSON number or a numeric string. An absent period parses as 0
// and is reported as missing by validation.
func parsePeriod(v any) (int, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
	default:
		return 0, false
	}
	p, err := strconv.Atoi(s)
	return p, err == nil
}
