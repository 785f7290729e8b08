package handlers

import (
	"net/http"

	"foodcart-routing-service/internal/api/dto"
)

// Health reports process liveness only; it does not touch the store.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.HealthResponse{Status: "ok"})
}
