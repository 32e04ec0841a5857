package web

import (
	"net/http"

	"github.com/erazemk/healthpilot/internal/app"
	webembed "github.com/erazemk/healthpilot/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(svc *app.Services) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Services:  svc,
		Templates: templates,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(svc.Secret, svc.DB)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)
	mux.HandleFunc("POST /contact", s.ContactSubmit)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Home)))
	mux.Handle("POST /water", cookieAuth(http.HandlerFunc(s.WaterSubmit)))

	mux.Handle("GET /profile", cookieAuth(http.HandlerFunc(s.ProfilePage)))
	mux.Handle("POST /profile", cookieAuth(http.HandlerFunc(s.ProfileSubmit)))

	mux.Handle("GET /calories", cookieAuth(http.HandlerFunc(s.CaloriesPage)))
	mux.Handle("POST /calories/add", cookieAuth(http.HandlerFunc(s.CaloriesAddSubmit)))

	mux.Handle("GET /workout", cookieAuth(http.HandlerFunc(s.WorkoutPage)))
	mux.Handle("POST /workout", cookieAuth(http.HandlerFunc(s.WorkoutSubmit)))
	mux.Handle("POST /workout/exercises", cookieAuth(http.HandlerFunc(s.WorkoutExerciseSubmit)))
	mux.Handle("POST /workout/exercises/{index}/delete", cookieAuth(http.HandlerFunc(s.WorkoutExerciseDelete)))
	mux.Handle("POST /workout/sets", cookieAuth(http.HandlerFunc(s.WorkoutSetSubmit)))
	mux.Handle("POST /workout/reset", cookieAuth(http.HandlerFunc(s.WorkoutReset)))

	mux.Handle("GET /workouts", cookieAuth(http.HandlerFunc(s.WorkoutsPage)))
	mux.Handle("GET /workouts/{id}", cookieAuth(http.HandlerFunc(s.WorkoutDetailPage)))
	mux.Handle("POST /workouts/{id}", cookieAuth(http.HandlerFunc(s.WorkoutUpdateSubmit)))
	mux.Handle("POST /workouts/{id}/delete", cookieAuth(http.HandlerFunc(s.WorkoutDeleteSubmit)))

	mux.Handle("GET /exercises/thumb", cookieAuth(http.HandlerFunc(s.ExerciseThumb)))

	return mux, nil
}
