package web

// respond.go provides unified JSON responses and error mapping for the web
// layer. Structural upload errors and commit protocol violations surface as
// 400s with a top-level message (plus a details list for missing columns);
// unknown jobs and previews of unknown types surface as 404s.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yhkim-dev/stockflow/internal/core"
)

// errorResponse is the JSON structure for API error responses.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// respondError maps pipeline errors to HTTP status codes.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest

	var missing *core.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		writeError(w, status, "missing required columns", missing.Missing...)
		return
	case errors.Is(err, core.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrUnknownType),
		errors.Is(err, core.ErrEmptyUpload),
		errors.Is(err, core.ErrNoDataRows),
		errors.Is(err, core.ErrPreviewNotFound),
		errors.Is(err, core.ErrTypeMismatch):
		// 400 by default
	default:
		status = http.StatusInternalServerError
	}

	slog.Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err,
	)
	writeError(w, status, err.Error())
}
