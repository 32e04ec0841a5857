package backendtest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/erazemk/healthpilot/internal/model"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[req.Email]
	if !found || u.password != req.Password {
		reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
		return
	}
	token := s.issueLocked(u.username, time.Now().Add(s.TokenTTL))
	ok(w, map[string]any{"message": "Login successful", "jwt_token": token, "username": u.username})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		badRequest(w, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[reg.Email]; taken {
		reply(w, http.StatusConflict, map[string]any{"success": false, "message": "User already exists"})
		return
	}
	s.addUserLocked(reg.Username, reg.Email, reg.Password)
	reply(w, http.StatusCreated, map[string]any{"success": true, "message": "User registered"})
}

func (s *Server) contact(w http.ResponseWriter, r *http.Request) {
	var msg model.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Email == "" || msg.Message == "" {
		badRequest(w, "email and message are required")
		return
	}
	s.mu.Lock()
	s.contacts = append(s.contacts, msg)
	s.mu.Unlock()
	ok(w, nil)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request, username string) {
	if r.URL.Query().Get("username") != username {
		forbidden(w)
		return
	}
	ok(w, map[string]any{"profile": s.Profile(username)})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, username string) {
	var p model.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if p.Username != username {
		forbidden(w)
		return
	}
	s.mu.Lock()
	s.profiles[username] = &p
	s.mu.Unlock()
	ok(w, map[string]any{"message": "Profile updated"})
}

func (s *Server) getMeal(w http.ResponseWriter, r *http.Request, username string) {
	if r.URL.Query().Get("username") != username {
		forbidden(w)
		return
	}
	s.mu.Lock()
	meals, found := s.meals[username][r.URL.Query().Get("date")]
	s.mu.Unlock()
	if !found {
		reply(w, http.StatusNotFound, map[string]any{"success": false, "message": "No meals found"})
		return
	}
	ok(w, map[string]any{"meals": meals})
}

func (s *Server) addMeal(w http.ResponseWriter, r *http.Request, username string) {
	var req struct {
		Username string         `json:"username"`
		Date     string         `json:"date"`
		Meals    model.DayMeals `json:"meals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		badRequest(w, "invalid body")
		return
	}
	if req.Username != username {
		forbidden(w)
		return
	}
	s.SetMeals(username, req.Date, req.Meals)
	ok(w, map[string]any{"message": "Meals saved"})
}

func (s *Server) mealHistory(w http.ResponseWriter, r *http.Request, username string) {
	if r.URL.Query().Get("username") != username {
		forbidden(w)
		return
	}
	s.mu.Lock()
	history := []model.MealHistoryEntry{}
	for date, meals := range s.meals[username] {
		history = append(history, model.MealHistoryEntry{Date: date, Meals: meals})
	}
	s.mu.Unlock()
	sortHistory(history)
	ok(w, map[string]any{"history": history})
}

func (s *Server) getWater(w http.ResponseWriter, r *http.Request, username string) {
	if r.URL.Query().Get("username") != username {
		forbidden(w)
		return
	}
	ok(w, map[string]any{"amount": s.Water(username, r.URL.Query().Get("date"))})
}

func (s *Server) logWater(w http.ResponseWriter, r *http.Request, username string) {
	var req struct {
		Username string  `json:"username"`
		Date     string  `json:"date"`
		Amount   float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		badRequest(w, "invalid body")
		return
	}
	if req.Username != username {
		forbidden(w)
		return
	}
	s.mu.Lock()
	if s.water[username] == nil {
		s.water[username] = make(map[string]float64)
	}
	s.water[username][req.Date] += req.Amount
	total := s.water[username][req.Date]
	s.mu.Unlock()
	ok(w, map[string]any{"entry": map[string]any{"date": req.Date, "amount": total}})
}

func (s *Server) logWorkout(w http.ResponseWriter, r *http.Request, username string) {
	var wo model.Workout
	if err := json.NewDecoder(r.Body).Decode(&wo); err != nil || wo.Title == "" {
		badRequest(w, "invalid body")
		return
	}
	if wo.Username != username {
		forbidden(w)
		return
	}
	id := s.AddWorkout(username, wo)
	reply(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (s *Server) workoutHistory(w http.ResponseWriter, r *http.Request, username string) {
	if r.PathValue("username") != username {
		forbidden(w)
		return
	}
	ok(w, map[string]any{"workouts": s.Workouts(username)})
}

func (s *Server) updateWorkout(w http.ResponseWriter, r *http.Request, username string) {
	if r.PathValue("username") != username {
		forbidden(w)
		return
	}
	var wo model.Workout
	if err := json.NewDecoder(r.Body).Decode(&wo); err != nil {
		badRequest(w, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.workouts[username]
	for i := range list {
		if list[i].ID == r.PathValue("id") {
			wo.ID = list[i].ID
			wo.Username = username
			list[i] = wo
			ok(w, nil)
			return
		}
	}
	reply(w, http.StatusNotFound, map[string]any{"success": false, "message": "Workout not found"})
}

func (s *Server) deleteWorkout(w http.ResponseWriter, r *http.Request, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.workouts[username]
	for i := range list {
		if list[i].ID == r.PathValue("id") {
			s.workouts[username] = append(list[:i:i], list[i+1:]...)
			ok(w, nil)
			return
		}
	}
	reply(w, http.StatusNotFound, map[string]any{"success": false, "message": "Workout not found"})
}
