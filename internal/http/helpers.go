package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	applog "github.com/PierreBrethes/life-map-back/internal/log"
	"github.com/PierreBrethes/life-map-back/internal/storage"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// respondStorageError maps storage failures to status codes, logging
// everything that is not a plain miss.
func respondStorageError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), msg, applog.FieldError, err)
	respondError(w, http.StatusInternalServerError, msg)
}

// parseDateParam parses an RFC 3339 or date-only query parameter. An empty
// value yields the zero time.
func parseDateParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
