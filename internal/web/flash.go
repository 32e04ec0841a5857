package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/erazemk/healthpilot/internal/notify"
)

const flashCookie = "flash"

// setFlash queues a notice for the next rendered page.
func setFlash(w http.ResponseWriter, n notify.Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the queued notice, if any, and clears it.
func takeFlash(w http.ResponseWriter, r *http.Request) *notify.Notice {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var n notify.Notice
	if err := json.Unmarshal(data, &n); err != nil || n.Text == "" {
		return nil
	}
	return &n
}

// flashNotifier adapts a response to notify.Notifier.
type flashNotifier struct {
	w http.ResponseWriter
}

func (f flashNotifier) Notify(n notify.Notice) {
	setFlash(f.w, n)
}
