package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"foodcart-routing-service/internal/platform/obs"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// internalError logs err and replies with a generic 500 body.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	zap.L().Error(op+" failed",
		zap.String("req_id", obs.RequestID(r.Context())),
		zap.Error(err),
	)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// NotFound and MethodNotAllowed keep router-level errors in the JSON shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
