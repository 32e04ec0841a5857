package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/healthpilot/internal/imaging"
	"github.com/erazemk/healthpilot/internal/lookup"
)

// ExerciseThumb handles GET /exercises/thumb?src=. It downloads an exercise
// demonstration asset and serves a small still JPEG of it.
func (s *Server) ExerciseThumb(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		http.Error(w, "src is required", http.StatusBadRequest)
		return
	}

	data, err := s.Exercises.Asset(r.Context(), src)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, lookup.ErrAssetURL):
			status = http.StatusBadRequest
		case errors.Is(err, lookup.ErrAssetTooLarge):
			status = http.StatusRequestEntityTooLarge
		}
		slog.Warn("failed to fetch exercise asset", "src", src, "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	thumb, err := imaging.Thumbnail(data, 0)
	if err != nil {
		slog.Warn("failed to build exercise thumbnail", "src", src, "error", err)
		http.Error(w, "unsupported image", http.StatusUnsupportedMediaType)
		return
	}

	w.Header().Set("Content-Type", thumb.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write(thumb.Data)
}
