package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/charts"
)

// WaterHandler logs water intake.
type WaterHandler struct {
	*app.Services
}

type waterRequest struct {
	ML int `json:"ml"`
}

type waterResponse struct {
	Amount  float64 `json:"amount"`
	Goal    float64 `json:"goal"`
	Percent float64 `json:"percent"`
}

// Add handles POST /api/water.
func (h *WaterHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req waterRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := GetSession(r.Context())
	total, err := h.AddWater(r.Context(), sess, req.ML)
	if errors.Is(err, app.ErrInvalidWater) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	profile, err := h.Backend.Profile(r.Context(), sess)
	if err != nil {
		slog.Warn("water goal unavailable", "user", sess.Username, "error", err)
	}
	goal := profile.WaterGoalOrDefault()

	slog.Info("water logged", "user", sess.Username, "session", GetClaims(r.Context()).ID, "ml", req.ML, "total", total)
	jsonResponse(w, http.StatusOK, waterResponse{
		Amount:  total,
		Goal:    goal,
		Percent: charts.Progress(total, goal),
	})
}
