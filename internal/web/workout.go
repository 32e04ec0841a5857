package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/auth"
	"github.com/erazemk/healthpilot/internal/charts"
	"github.com/erazemk/healthpilot/internal/diary"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
)

const (
	draftCookie = "workout_draft"
	// maxDraftCookie keeps the sealed draft under the browser cookie limit.
	maxDraftCookie = 3800
)

// loadDraft reads the workout being assembled. A missing or unreadable
// cookie yields an empty draft.
func (s *Server) loadDraft(r *http.Request) *diary.WorkoutDraft {
	draft := &diary.WorkoutDraft{}
	cookie, err := r.Cookie(draftCookie)
	if err != nil || cookie.Value == "" {
		return draft
	}
	plain, err := auth.Unseal(auth.KeyFromSecret(s.Secret), cookie.Value)
	if err != nil {
		slog.Debug("discarding unreadable workout draft", "error", err)
		return draft
	}
	if err := json.Unmarshal([]byte(plain), draft); err != nil {
		return &diary.WorkoutDraft{}
	}
	return draft
}

// saveDraft seals the draft into its cookie.
func (s *Server) saveDraft(w http.ResponseWriter, draft *diary.WorkoutDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	sealed, err := auth.Seal(auth.KeyFromSecret(s.Secret), string(data))
	if err != nil {
		return err
	}
	if len(sealed) > maxDraftCookie {
		return errDraftTooLarge
	}
	http.SetCookie(w, &http.Cookie{
		Name:     draftCookie,
		Value:    sealed,
		Path:     "/workout",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func clearDraft(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     draftCookie,
		Value:    "",
		Path:     "/workout",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

type draftError string

func (e draftError) Error() string { return string(e) }

const errDraftTooLarge = draftError("the workout is too large; log it before adding more")

type workoutPage struct {
	PageData
	Date    string
	Draft   *diary.WorkoutDraft
	Today   *model.Workout
	Query   string
	Results []model.ExerciseInfo
}

// WorkoutPage handles GET /workout?name=. With name set, matching exercises
// are listed so they can be added without scripts.
func (s *Server) WorkoutPage(w http.ResponseWriter, r *http.Request) {
	sess := GetWebSession(r.Context())
	data := &workoutPage{
		PageData: s.page(w, r, "Workout Logger", "workout"),
		Date:     s.Today(),
		Draft:    s.loadDraft(r),
		Query:    strings.TrimSpace(r.URL.Query().Get("name")),
	}

	workouts, err := s.Backend.WorkoutHistory(r.Context(), sess)
	if err != nil {
		if app.SessionRejected(err) {
			s.fail(w, r, "Failed to load workouts", err, "/login")
			return
		}
		n := app.Explain("Failed to load today's workout", err)
		data.Notice = &n
	}
	if wo, ok := charts.WorkoutOn(workouts, data.Date); ok {
		data.Today = &wo
	}

	if data.Query != "" {
		found, err := s.SuggestExercises(r.Context(), data.Query)
		if err != nil {
			n := app.Explain("Exercise search failed", err)
			data.Notice = &n
		}
		data.Results = found
	}

	s.Templates.Render(w, "workout.html", data)
}

// WorkoutExerciseSubmit handles POST /workout/exercises.
func (s *Server) WorkoutExerciseSubmit(w http.ResponseWriter, r *http.Request) {
	info := model.ExerciseInfo{
		ID:        r.FormValue("id"),
		Name:      strings.TrimSpace(r.FormValue("name")),
		Target:    r.FormValue("target"),
		BodyPart:  r.FormValue("bodyPart"),
		Equipment: r.FormValue("equipment"),
		GifURL:    r.FormValue("gifUrl"),
	}
	if info.Name == "" {
		done(w, r, notify.Warnf("Choose an exercise first."), "/workout")
		return
	}

	draft := s.loadDraft(r)
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		draft.Title = title
	}
	draft.AddExercise(info)
	if err := s.saveDraft(w, draft); err != nil {
		done(w, r, notify.Warnf("%v", err), "/workout")
		return
	}
	done(w, r, notify.Successf("Added %s.", info.Name), "/workout")
}

// WorkoutExerciseDelete handles POST /workout/exercises/{index}/delete.
func (s *Server) WorkoutExerciseDelete(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	draft := s.loadDraft(r)
	if err := draft.RemoveExercise(i); err != nil {
		done(w, r, notify.Warnf("%v", err), "/workout")
		return
	}
	if err := s.saveDraft(w, draft); err != nil {
		done(w, r, notify.Warnf("%v", err), "/workout")
		return
	}
	http.Redirect(w, r, "/workout", http.StatusSeeOther)
}

// WorkoutSetSubmit handles POST /workout/sets.
func (s *Server) WorkoutSetSubmit(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(r.FormValue("exercise"))
	if err != nil {
		done(w, r, notify.Warnf("Choose an exercise first."), "/workout")
		return
	}
	weight, werr := model.ParseNumber(r.FormValue("weight"))
	reps, rerr := model.ParseNumber(r.FormValue("reps"))
	if werr != nil || rerr != nil {
		done(w, r, notify.Warnf("Weight and reps must be numbers."), "/workout")
		return
	}

	draft := s.loadDraft(r)
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		draft.Title = title
	}
	if err := draft.AddSet(i, float64(weight), float64(reps)); err != nil {
		s.fail(w, r, "Failed to add set", err, "/workout")
		return
	}
	if err := s.saveDraft(w, draft); err != nil {
		done(w, r, notify.Warnf("%v", err), "/workout")
		return
	}
	http.Redirect(w, r, "/workout", http.StatusSeeOther)
}

// WorkoutSubmit handles POST /workout.
func (s *Server) WorkoutSubmit(w http.ResponseWriter, r *http.Request) {
	sess := GetWebSession(r.Context())
	draft := s.loadDraft(r)
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		draft.Title = title
	}

	if _, err := draft.Workout(s.Today()); err != nil {
		if err := s.saveDraft(w, draft); err != nil {
			slog.Warn("failed to keep workout draft", "error", err)
		}
		done(w, r, notify.Warnf("Please add a title and at least one exercise."), "/workout")
		return
	}

	wo, err := s.LogWorkout(r.Context(), sess, draft)
	if err != nil {
		s.fail(w, r, "Failed to submit workout", err, "/workout")
		return
	}

	clearDraft(w)
	slog.Info("workout logged", "user", sess.Username, "title", wo.Title, "exercises", len(wo.Exercises))
	done(w, r, notify.Successf("Workout logged!"), "/workout")
}

// WorkoutReset handles POST /workout/reset.
func (s *Server) WorkoutReset(w http.ResponseWriter, r *http.Request) {
	clearDraft(w)
	http.Redirect(w, r, "/workout", http.StatusSeeOther)
}
