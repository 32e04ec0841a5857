package model

import "fmt"

// Set is one set of an exercise.
type Set struct {
	Weight Number `json:"weight"`
	Reps   Number `json:"reps"`
}

// LoggedExercise is an exercise as stored with a workout.
type LoggedExercise struct {
	Name      string `json:"name"`
	GifURL    string `json:"gifUrl,omitempty"`
	Target    string `json:"target,omitempty"`
	Equipment string `json:"equipment,omitempty"`
	BodyPart  string `json:"bodyPart,omitempty"`
	Sets      []Set  `json:"sets"`
}

// NewLoggedExercise starts a logged exercise from a lookup candidate.
func NewLoggedExercise(info ExerciseInfo, sets []Set) LoggedExercise {
	return LoggedExercise{
		Name:      info.Name,
		GifURL:    info.GifURL,
		Target:    info.Target,
		Equipment: info.Equipment,
		BodyPart:  info.BodyPart,
		Sets:      sets,
	}
}

// Workout is one logged training session.
type Workout struct {
	ID        string           `json:"_id,omitempty"`
	Username  string           `json:"username,omitempty"`
	Title     string           `json:"title"`
	Date      string           `json:"date"`
	Exercises []LoggedExercise `json:"exercises"`
}

// Validate checks the workout can be submitted.
func (w *Workout) Validate() error {
	if w.Title == "" || len(w.Exercises) == 0 {
		return fmt.Errorf("a workout needs a title and at least one exercise")
	}
	return nil
}
