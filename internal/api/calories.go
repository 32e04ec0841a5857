package api

import (
	"net/http"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/charts"
)

// CaloriesHandler serves calorie history.
type CaloriesHandler struct {
	*app.Services
}

type historyResponse struct {
	Goal   float64        `json:"goal"`
	Points []charts.Point `json:"points"`
}

// History handles GET /api/calories/history.
func (h *CaloriesHandler) History(w http.ResponseWriter, r *http.Request) {
	points, goal, err := h.CalorieHistory(r.Context(), GetSession(r.Context()))
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, historyResponse{Goal: goal, Points: points})
}
