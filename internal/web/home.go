package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
)

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	sess := GetWebSession(r.Context())
	pd := s.page(w, r, "Dashboard", "home")

	overview, err := s.Overview(r.Context(), sess, s.Today())
	if err != nil {
		if app.SessionRejected(err) {
			s.fail(w, r, "Failed to load your day", err, "/login")
			return
		}
		slog.Error("failed to load overview", "user", sess.Username, "error", err)
		if pd.Notice == nil {
			n := notify.Errorf("Some of today's data could not be loaded.")
			pd.Notice = &n
		}
	}

	s.Templates.Render(w, "home.html", &struct {
		PageData
		Overview *app.Overview
	}{
		PageData: pd,
		Overview: overview,
	})
}

// WaterSubmit handles POST /water.
func (s *Server) WaterSubmit(w http.ResponseWriter, r *http.Request) {
	back := localPath(r.FormValue("next"), "/")

	ml, err := strconv.Atoi(r.FormValue("ml"))
	if err != nil {
		ml = 0
	}
	total, err := s.AddWater(r.Context(), GetWebSession(r.Context()), ml)
	if err != nil {
		s.fail(w, r, "Failed to log water", err, back)
		return
	}
	done(w, r, notify.Successf("Added %dml. Today: %s L.", ml, strconv.FormatFloat(total, 'f', -1, 64)), back)
}

// ContactSubmit handles POST /contact. It works with or without a session.
func (s *Server) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	back := localPath(r.FormValue("next"), "/")
	msg := model.ContactMessage{
		Email:   strings.TrimSpace(r.FormValue("email")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
	if msg.Email == "" || msg.Message == "" {
		done(w, r, notify.Warnf("Please fill in both fields."), back)
		return
	}

	if err := s.Backend.Contact(r.Context(), msg); err != nil {
		s.fail(w, r, "Failed to send message", err, back)
		return
	}
	slog.Info("contact message sent", "email", msg.Email)
	done(w, r, notify.Successf("Message sent successfully!"), back)
}
