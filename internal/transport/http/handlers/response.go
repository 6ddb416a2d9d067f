package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/vedran77/habyx/pkg/validator"
)

var debug atomic.Bool

// SetDebug controls whether 500 responses carry the underlying error.
func SetDebug(on bool) {
	debug.Store(on)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":    "VALIDATION_ERROR",
			"message": "Request validation failed",
			"fields":  errs,
		},
	})
}

func writeInternalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"op", op,
		"request_id", chimw.GetReqID(r.Context()),
		"err", err,
	)

	body := map[string]string{
		"code":    "INTERNAL",
		"message": "Something went wrong",
	}
	if debug.Load() {
		body["detail"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": body})
}

func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}
