// Package backendtest runs an in-memory application backend for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erazemk/healthpilot/internal/model"
)

var signingKey = []byte("backendtest")

type user struct {
	username string
	email    string
	password string
}

type failure struct {
	status  int
	message string
}

// Server is a fake backend. Route keys used by Calls and Fail are the
// ServeMux patterns, e.g. "GET /api/water/get".
type Server struct {
	*httptest.Server

	// TokenTTL is the lifetime of tokens issued by login.
	TokenTTL time.Duration

	mu       sync.Mutex
	users    map[string]*user // by email
	tokens   map[string]string
	profiles map[string]*model.Profile
	meals    map[string]map[string]model.DayMeals
	water    map[string]map[string]float64
	workouts map[string][]model.Workout
	contacts []model.ContactMessage
	calls    map[string]int
	failures map[string]failure
	nextID   int
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		TokenTTL: time.Hour,
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		profiles: make(map[string]*model.Profile),
		meals:    make(map[string]map[string]model.DayMeals),
		water:    make(map[string]map[string]float64),
		workouts: make(map[string][]model.Workout),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/contact", s.contact)
	mux.HandleFunc("GET /api/auth/profile", s.authed(s.getProfile))
	mux.HandleFunc("PUT /api/auth/updateprofile", s.authed(s.updateProfile))
	mux.HandleFunc("GET /api/meals/getmeal", s.authed(s.getMeal))
	mux.HandleFunc("POST /api/meals/addmeal", s.authed(s.addMeal))
	mux.HandleFunc("GET /api/meals/gethistory", s.authed(s.mealHistory))
	mux.HandleFunc("GET /api/water/get", s.authed(s.getWater))
	mux.HandleFunc("POST /api/water/log", s.authed(s.logWater))
	mux.HandleFunc("POST /api/workout/log", s.authed(s.logWorkout))
	mux.HandleFunc("GET /api/workout/history/{username}", s.authed(s.workoutHistory))
	mux.HandleFunc("PUT /api/workout/{username}/{id}", s.authed(s.updateWorkout))
	mux.HandleFunc("DELETE /api/workout/{id}", s.authed(s.deleteWorkout))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(username, email, password)
}

func (s *Server) addUserLocked(username, email, password string) {
	s.users[email] = &user{username: username, email: email, password: password}
	if _, ok := s.profiles[username]; !ok {
		s.profiles[username] = &model.Profile{Username: username, Email: email}
	}
}

// Session issues a valid session for username without a login call.
func (s *Server) Session(username string) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Session{Username: username, AccessToken: s.issueLocked(username, time.Now().Add(s.TokenTTL))}
}

// Token signs a token for username expiring at exp. It is accepted by the
// server regardless of exp, so tests can check client-side expiry.
func (s *Server) Token(username string, exp time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username, exp)
}

func (s *Server) issueLocked(username string, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.tokens[signed] = username
	return signed
}

// Calls returns how often a route was hit.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns how many requests reached the server.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Fail makes every following call to route answer with status and an
// envelope carrying message. A zero status clears the failure.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = failure{status, message}
}

// SetProfile replaces a stored profile.
func (s *Server) SetProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Username] = &p
}

// Profile returns a copy of a stored profile.
func (s *Server) Profile(username string) model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, found := s.profiles[username]; found {
		return *p
	}
	return model.Profile{Username: username}
}

// SetMeals replaces one stored day.
func (s *Server) SetMeals(username, date string, meals model.DayMeals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meals[username] == nil {
		s.meals[username] = make(map[string]model.DayMeals)
	}
	s.meals[username][date] = meals
}

// Meals returns one stored day.
func (s *Server) Meals(username, date string) (model.DayMeals, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meals[username][date]
	return m, ok
}

// Water returns the stored liters for a day.
func (s *Server) Water(username, date string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.water[username][date]
}

// AddWorkout stores a workout and returns its id.
func (s *Server) AddWorkout(username string, w model.Workout) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addWorkoutLocked(username, w)
}

func (s *Server) addWorkoutLocked(username string, w model.Workout) string {
	s.nextID++
	w.ID = "w" + strconv.Itoa(s.nextID)
	w.Username = username
	s.workouts[username] = append(s.workouts[username], w)
	return w.ID
}

// Workouts returns the stored workouts of a user.
func (s *Server) Workouts(username string) []model.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Workout(nil), s.workouts[username]...)
}

// Contacts returns the messages sent through the contact form.
func (s *Server) Contacts() []model.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ContactMessage(nil), s.contacts...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		route := r.Method + " " + r.URL.Path
		if _, pattern := next.(*http.ServeMux).Handler(r); pattern != "" {
			route = pattern
		}
		s.calls[route]++
		f, failing := s.failures[route]
		s.mu.Unlock()

		if failing {
			reply(w, f.status, map[string]any{"success": false, "message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(next func(w http.ResponseWriter, r *http.Request, username string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		username, found := s.tokens[token]
		s.mu.Unlock()
		if !found {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized"})
			return
		}
		next(w, r, username)
	}
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	reply(w, http.StatusOK, body)
}

func badRequest(w http.ResponseWriter, message string) {
	reply(w, http.StatusBadRequest, map[string]any{"success": false, "message": message})
}

func forbidden(w http.ResponseWriter) {
	reply(w, http.StatusForbidden, map[string]any{"success": false, "message": "Forbidden"})
}

func sortHistory(h []model.MealHistoryEntry) {
	slices.SortFunc(h, func(a, b model.MealHistoryEntry) int {
		return strings.Compare(a.Date, b.Date)
	})
}
