package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
)

type profileRow struct {
	model.ProfileField
	Value    string
	ReadOnly bool
}

// ProfilePage handles GET /profile.
func (s *Server) ProfilePage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Profile", "profile")

	profile, err := s.Backend.Profile(r.Context(), GetWebSession(r.Context()))
	if err != nil {
		if app.SessionRejected(err) {
			s.fail(w, r, "Failed to load profile", err, "/login")
			return
		}
		n := app.Explain("Failed to load profile", err)
		pd.Notice = &n
	}

	var rows []profileRow
	if profile != nil {
		for _, f := range model.ProfileFields {
			rows = append(rows, profileRow{
				ProfileField: f,
				Value:        profile.Field(f.Name),
				ReadOnly:     f.Name == "username",
			})
		}
	}

	s.Templates.Render(w, "profile.html", &struct {
		PageData
		Rows []profileRow
	}{
		PageData: pd,
		Rows:     rows,
	})
}

// ProfileSubmit handles POST /profile. Only a changed profile is saved.
func (s *Server) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	sess := GetWebSession(r.Context())

	profile, err := s.Backend.Profile(r.Context(), sess)
	if err != nil {
		s.fail(w, r, "Failed to load profile", err, "/profile")
		return
	}

	if err := r.ParseForm(); err != nil {
		done(w, r, notify.Warnf("Invalid form."), "/profile")
		return
	}

	changed := false
	for _, f := range model.ProfileFields {
		if f.Name == "username" {
			continue
		}
		values, posted := r.PostForm[f.Name]
		if !posted {
			continue
		}
		c, err := profile.SetField(f.Name, values[0])
		if err != nil {
			slog.Debug("invalid profile value", "field", f.Name, "error", err)
			done(w, r, notify.Warnf("%s must be a number.", f.Label), "/profile")
			return
		}
		changed = changed || c
	}

	if !changed {
		done(w, r, notify.Infof("No changes to save."), "/profile")
		return
	}

	if err := s.Backend.UpdateProfile(r.Context(), sess, profile); err != nil {
		s.fail(w, r, "Failed to update profile", err, "/profile")
		return
	}
	slog.Info("profile updated", "user", sess.Username)
	done(w, r, notify.Successf("Profile updated successfully!"), "/profile")
}
