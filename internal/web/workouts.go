package web

import (
	"cmp"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/diary"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
)

// WorkoutsPage handles GET /workouts.
func (s *Server) WorkoutsPage(w http.ResponseWriter, r *http.Request) {
	sess := GetWebSession(r.Context())
	pd := s.page(w, r, "Workout History", "workouts")

	workouts, err := s.Backend.WorkoutHistory(r.Context(), sess)
	if err != nil {
		if app.SessionRejected(err) {
			s.fail(w, r, "Failed to load workouts", err, "/login")
			return
		}
		n := app.Explain("Failed to load workouts", err)
		pd.Notice = &n
	}
	slices.SortStableFunc(workouts, func(a, b model.Workout) int {
		return cmp.Compare(b.Date, a.Date)
	})

	s.Templates.Render(w, "workouts.html", &struct {
		PageData
		Workouts []model.Workout
	}{
		PageData: pd,
		Workouts: workouts,
	})
}

// findWorkout loads the session user's workout with the given id.
func (s *Server) findWorkout(r *http.Request, id string) (*model.Workout, error) {
	workouts, err := s.Backend.WorkoutHistory(r.Context(), GetWebSession(r.Context()))
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		if workouts[i].ID == id {
			return &workouts[i], nil
		}
	}
	return nil, nil
}

// WorkoutDetailPage handles GET /workouts/{id}.
func (s *Server) WorkoutDetailPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	wo, err := s.findWorkout(r, id)
	if err != nil {
		s.fail(w, r, "Failed to load workout", err, "/workouts")
		return
	}
	if wo == nil {
		http.NotFound(w, r)
		return
	}

	s.Templates.Render(w, "workout_detail.html", &struct {
		PageData
		Workout *model.Workout
	}{
		PageData: s.page(w, r, wo.Title, "workouts"),
		Workout:  wo,
	})
}

// WorkoutUpdateSubmit handles POST /workouts/{id}. Sets are posted as
// weight_<exercise>_<set> and reps_<exercise>_<set>. A set posted with
// empty reps is dropped and one not posted at all is kept.
func (s *Server) WorkoutUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	back := "/workouts/" + id

	wo, err := s.findWorkout(r, id)
	if err != nil {
		s.fail(w, r, "Failed to load workout", err, back)
		return
	}
	if wo == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		done(w, r, notify.Warnf("Invalid form."), back)
		return
	}
	if title := strings.TrimSpace(r.PostForm.Get("title")); title != "" {
		wo.Title = title
	}
	for i := range wo.Exercises {
		ex := &wo.Exercises[i]
		sets := make([]model.Set, 0, len(ex.Sets))
		for j, set := range ex.Sets {
			reps, posted := r.PostForm[fmt.Sprintf("reps_%d_%d", i, j)]
			if !posted {
				sets = append(sets, set)
				continue
			}
			if strings.TrimSpace(reps[0]) == "" {
				continue
			}
			updated, err := parseSet(r.PostForm.Get(fmt.Sprintf("weight_%d_%d", i, j)), reps[0])
			if err != nil {
				s.fail(w, r, "Failed to update workout", err, back)
				return
			}
			sets = append(sets, updated)
		}
		ex.Sets = sets
	}

	if err := s.Backend.UpdateWorkout(r.Context(), GetWebSession(r.Context()), *wo); err != nil {
		s.fail(w, r, "Failed to update workout", err, back)
		return
	}
	done(w, r, notify.Successf("Workout updated."), back)
}

func parseSet(weight, reps string) (model.Set, error) {
	wv, werr := model.ParseNumber(weight)
	rv, rerr := model.ParseNumber(reps)
	if werr != nil || rerr != nil {
		return model.Set{}, diary.ErrInvalidSet
	}
	if err := diary.ValidateSet(float64(wv), float64(rv)); err != nil {
		return model.Set{}, err
	}
	return model.Set{Weight: wv, Reps: rv}, nil
}

// WorkoutDeleteSubmit handles POST /workouts/{id}/delete.
func (s *Server) WorkoutDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess := GetWebSession(r.Context())
	if err := s.Backend.DeleteWorkout(r.Context(), sess, id); err != nil {
		s.fail(w, r, "Failed to delete workout", err, "/workouts/"+id)
		return
	}
	slog.Info("workout deleted", "user", sess.Username, "id", id)
	done(w, r, notify.Successf("Workout deleted."), "/workouts")
}

// setCount totals the sets of a workout.
func setCount(wo model.Workout) int {
	n := 0
	for _, ex := range wo.Exercises {
		n += len(ex.Sets)
	}
	return n
}
