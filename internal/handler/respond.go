package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	appErrors "github.com/unclebandit/customer-service/internal/errors"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error onto a status code. Storage failures get a
// generic body; the cause only goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if appErrors.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "customer not found"})
		return
	}
	if ve, ok := appErrors.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid customer", Details: ve.Details()})
		return
	}

	logger.Error("❌ request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"err", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
