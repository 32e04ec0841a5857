package api

import (
	"net/http"

	"github.com/erazemk/healthpilot/internal/app"
)

// SuggestHandler serves the search-as-you-type boxes.
type SuggestHandler struct {
	*app.Services
}

// Foods handles GET /api/foods?q=.
func (h *SuggestHandler) Foods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.SuggestFoods(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, foods)
}

// Exercises handles GET /api/exercises?name=.
func (h *SuggestHandler) Exercises(w http.ResponseWriter, r *http.Request) {
	found, err := h.SuggestExercises(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, found)
}
