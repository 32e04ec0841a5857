package api

import (
	"net/http"

	"github.com/erazemk/healthpilot/internal/app"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(svc *app.Services) http.Handler {
	mux := http.NewServeMux()

	suggestHandler := &SuggestHandler{Services: svc}
	caloriesHandler := &CaloriesHandler{Services: svc}
	waterHandler := &WaterHandler{Services: svc}

	authMW := AuthMiddleware(svc.Secret, svc.DB)

	mux.Handle("GET /api/foods", authMW(http.HandlerFunc(suggestHandler.Foods)))
	mux.Handle("GET /api/exercises", authMW(http.HandlerFunc(suggestHandler.Exercises)))
	mux.Handle("GET /api/calories/history", authMW(http.HandlerFunc(caloriesHandler.History)))
	mux.Handle("POST /api/water", authMW(http.HandlerFunc(waterHandler.Add)))

	return mux
}
