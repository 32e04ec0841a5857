package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/auth"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
	"github.com/erazemk/healthpilot/internal/store"
)

type loginPage struct {
	PageData
	Email string
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &loginPage{PageData: s.page(w, r, "Login", "login")})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	render := func(n notify.Notice) {
		s.Templates.Render(w, "login.html", &loginPage{
			PageData: PageData{Title: "Login", Active: "login", Notice: &n},
			Email:    email,
		})
	}

	if email == "" || password == "" {
		render(notify.Warnf("Enter your email and password."))
		return
	}

	sess, err := s.Backend.Login(r.Context(), email, password)
	if err != nil {
		slog.Warn("login failed", "email", email, "remote", r.RemoteAddr, "error", err)
		render(app.Explain("Login failed", err))
		return
	}

	token, err := auth.GenerateToken(s.Secret, sess.Username, sess.AccessToken)
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		render(notify.Errorf("Login failed: could not start a session."))
		return
	}
	claims, err := auth.ValidateToken(s.Secret, token)
	if err != nil {
		render(notify.Errorf("Login failed: could not start a session."))
		return
	}

	slog.Info("user logged in", "user", sess.Username)
	setAuthCookie(w, token, claims.ExpiresAt.Time)
	done(w, r, notify.Successf("Welcome back, %s!", sess.Username), "/")
}

type registerPage struct {
	PageData
	Form model.Registration
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &registerPage{PageData: s.page(w, r, "Register", "register")})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	reg := model.Registration{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
	}

	render := func(n notify.Notice) {
		reg.Password = ""
		s.Templates.Render(w, "register.html", &registerPage{
			PageData: PageData{Title: "Register", Active: "register", Notice: &n},
			Form:     reg,
		})
	}

	age, err := model.ParseNumber(r.FormValue("age"))
	if err != nil || age < 0 {
		render(notify.Warnf("Age must be a number."))
		return
	}
	reg.Age = age

	if err := s.Backend.Register(r.Context(), reg); err != nil {
		render(app.Explain("Registration failed", err))
		return
	}

	slog.Info("user registered", "user", reg.Username)
	done(w, r, notify.Successf("Registration successful! You can log in now."), "/login")
}

// Logout handles POST /logout. The session is revoked so the cookie cannot
// be replayed.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.Secret, cookie.Value); err == nil && claims.ID != "" {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := store.RevokeSession(ctx, s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke session", "error", err)
			} else {
				slog.Info("user logged out", "user", claims.Username)
			}
		}
	}

	clearAuthCookie(w)
	done(w, r, notify.Infof("You have been logged out."), "/login")
}
