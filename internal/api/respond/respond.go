// Package respond provides shared JSON response utilities for API handlers.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taskflowhq/taskflow-api/internal/apperr"
)

// JSON marshals v and writes it with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorMsg writes the flat error shape {"error": message}.
func ErrorMsg(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Error maps a classified error to its HTTP status and writes it. Internal
// details are logged, not leaked: unclassified errors surface as a generic
// message.
func Error(w http.ResponseWriter, err error, log *slog.Logger) {
	kind := apperr.KindOf(err)
	log.Error("request failed", "kind", kind.String(), "error", err)

	msg := err.Error()
	if kind == apperr.Internal {
		msg = "Internal server error"
	}
	ErrorMsg(w, kind.HTTPStatus(), msg)
}
