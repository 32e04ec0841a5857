package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/healthpilot/internal/backend"
	"github.com/erazemk/healthpilot/internal/lookup"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// upstreamError maps a failed backend or lookup call to a JSON error.
func upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		be *backend.Error
		se *lookup.StatusError
	)
	switch {
	case errors.Is(err, backend.ErrNotLoggedIn):
		jsonError(w, http.StatusUnauthorized, "not logged in")
	case errors.Is(err, lookup.ErrNotConfigured):
		jsonError(w, http.StatusServiceUnavailable, "lookup service is not configured")
	case errors.As(err, &be) && be.Status == http.StatusUnauthorized:
		jsonError(w, http.StatusUnauthorized, be.Message)
	case errors.As(err, &be):
		jsonError(w, http.StatusBadGateway, be.Message)
	case errors.As(err, &se):
		slog.Warn("lookup failed", "service", se.Service, "status", se.Status, "path", r.URL.Path,
			"request_id", RequestID(r.Context()))
		jsonError(w, http.StatusBadGateway, se.Service+" lookup failed")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the answer.
	default:
		slog.Error("upstream call failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		jsonError(w, http.StatusBadGateway, "upstream request failed")
	}
}
