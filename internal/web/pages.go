package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/notify"
)

// page builds the base data for an authenticated page and consumes the
// pending flash notice.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title, active string) PageData {
	pd := PageData{
		Title:  title,
		Token:  GetWebToken(r.Context()),
		Active: active,
		Notice: takeFlash(w, r),
	}
	if sess := GetWebSession(r.Context()); sess != nil {
		pd.User = sess.Username
	}
	return pd
}

// fail reports a failed operation. Rejected sessions are sent back to the
// login page; everything else is flashed and redirected to back.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, what string, err error, back string) {
	notice := app.Explain(what, err)
	if app.SessionRejected(err) {
		clearAuthCookie(w)
		setFlash(w, notify.Warnf("Your session has expired. Please log in again."))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if notice.Level == notify.Error {
		slog.Warn(strings.ToLower(what), "path", r.URL.Path, "error", err)
	}
	flashNotifier{w}.Notify(notice)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// done flashes a success notice and redirects to back.
func done(w http.ResponseWriter, r *http.Request, n notify.Notice, back string) {
	setFlash(w, n)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// localPath returns p when it is a same-site path, otherwise fallback.
func localPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	return p
}
