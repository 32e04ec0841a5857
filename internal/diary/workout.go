package diary

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/erazemk/healthpilot/internal/model"
)

// ErrInvalidSet is returned for a set with no reps or a negative weight.
var ErrInvalidSet = errors.New("a set needs at least one rep and a non-negative weight")

// WorkoutDraft is a workout being assembled before it is logged.
type WorkoutDraft struct {
	Title     string                 `json:"title"`
	Exercises []model.LoggedExercise `json:"exercises"`
}

// AddExercise appends an exercise with no sets and returns its index.
func (d *WorkoutDraft) AddExercise(info model.ExerciseInfo) int {
	d.Exercises = append(d.Exercises, model.NewLoggedExercise(info, []model.Set{}))
	return len(d.Exercises) - 1
}

// RemoveExercise drops exercise i.
func (d *WorkoutDraft) RemoveExercise(i int) error {
	if i < 0 || i >= len(d.Exercises) {
		return fmt.Errorf("no exercise %d in the workout", i)
	}
	d.Exercises = append(d.Exercises[:i:i], d.Exercises[i+1:]...)
	return nil
}

// AddSet appends a set to exercise i.
func (d *WorkoutDraft) AddSet(i int, weight, reps float64) error {
	if i < 0 || i >= len(d.Exercises) {
		return fmt.Errorf("no exercise %d in the workout", i)
	}
	if err := ValidateSet(weight, reps); err != nil {
		return err
	}
	ex := &d.Exercises[i]
	ex.Sets = append(ex.Sets, model.Set{Weight: model.Number(weight), Reps: model.Number(reps)})
	return nil
}

// ValidateSet checks one set's numbers.
func ValidateSet(weight, reps float64) error {
	if !(reps >= 1) || math.IsInf(reps, 0) || !(weight >= 0) || math.IsInf(weight, 0) {
		return ErrInvalidSet
	}
	return nil
}

// Empty reports whether nothing has been added yet.
func (d *WorkoutDraft) Empty() bool {
	return strings.TrimSpace(d.Title) == "" && len(d.Exercises) == 0
}

// Workout finalizes the draft for date.
func (d *WorkoutDraft) Workout(date string) (model.Workout, error) {
	w := model.Workout{
		Title:     strings.TrimSpace(d.Title),
		Date:      date,
		Exercises: d.Exercises,
	}
	if err := w.Validate(); err != nil {
		return model.Workout{}, err
	}
	return w, nil
}
