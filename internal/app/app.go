// Package app wires the backend and lookup clients into the operations the
// web UI, the JSON API and the command line share.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/healthpilot/internal/backend"
	"github.com/erazemk/healthpilot/internal/charts"
	"github.com/erazemk/healthpilot/internal/config"
	"github.com/erazemk/healthpilot/internal/diary"
	"github.com/erazemk/healthpilot/internal/lookup"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/suggest"
)

// Minimum trimmed query lengths that trigger a lookup.
const (
	FoodMinQuery     = 1
	ExerciseMinQuery = 2
)

// WaterPortions are the quick-add amounts offered for water, in ml.
var WaterPortions = []int{250, 500, 750, 1000}

// MaxWaterPortion bounds a single water entry, in ml.
const MaxWaterPortion = 5000

// ErrInvalidWater is returned for a water entry outside (0, MaxWaterPortion].
var ErrInvalidWater = fmt.Errorf("water amount must be between 1 and %d ml", MaxWaterPortion)

// Services holds the clients every front end uses.
type Services struct {
	DB        *sql.DB
	Secret    string
	Backend   *backend.Client
	Foods     *lookup.FoodClient
	Exercises *lookup.ExerciseClient
	Config    *config.Config
	Now       func() time.Time
}

// New builds the services from configuration.
func New(cfg *config.Config, db *sql.DB, secret string) *Services {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Services{
		DB:        db,
		Secret:    secret,
		Backend:   backend.New(cfg.BackendURL, httpClient),
		Foods:     lookup.NewFoodClient(cfg.Food, cfg.Suggest.Limit, httpClient),
		Exercises: lookup.NewExerciseClient(cfg.Exercise, httpClient),
		Config:    cfg,
		Now:       time.Now,
	}
}

// Today is the current diary date.
func (s *Services) Today() string {
	if s.Now == nil {
		return diary.Today(time.Now())
	}
	return diary.Today(s.Now())
}

// SuggestDelay is the configured debounce window.
func (s *Services) SuggestDelay() time.Duration {
	if s.Config == nil || s.Config.Suggest.Delay <= 0 {
		return suggest.DefaultDelay
	}
	return s.Config.Suggest.Delay
}

// SuggestFoods looks up foods for a search box. Queries too short to search
// return an empty list without a call.
func (s *Services) SuggestFoods(ctx context.Context, query string) ([]model.Food, error) {
	if !suggest.Ready(query, FoodMinQuery) {
		return []model.Food{}, nil
	}
	return s.Foods.Search(ctx, query)
}

// SuggestExercises looks up exercises for a search box.
func (s *Services) SuggestExercises(ctx context.Context, query string) ([]model.ExerciseInfo, error) {
	if !suggest.Ready(query, ExerciseMinQuery) {
		return []model.ExerciseInfo{}, nil
	}
	return s.Exercises.Search(ctx, query)
}

// Overview is the home screen summary of one day.
type Overview struct {
	Date           string
	Profile        *model.Profile
	Meals          model.DayMeals
	Calories       int
	CalorieGoal    float64
	CaloriePercent float64
	Water          float64
	WaterGoal      float64
	WaterPercent   float64
	Workout        *model.Workout
}

// WorkoutDone reports whether a workout was logged that day.
func (o *Overview) WorkoutDone() bool {
	return o.Workout != nil
}

// Overview fetches the profile, meals, water and workouts for date
// concurrently. Parts that fail keep their defaults and their errors are
// joined into err, so callers can still show what loaded.
func (s *Services) Overview(ctx context.Context, sess *model.Session, date string) (*Overview, error) {
	if _, err := s.Backend.Authorize(sess); err != nil {
		return nil, err
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		errs     []error
		profile  *model.Profile
		meals    model.DayMeals
		water    float64
		workouts []model.Workout
	)
	record := func(what string, err error) {
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("loading %s: %w", what, err))
			mu.Unlock()
		}
	}

	g.Go(func() error {
		p, err := s.Backend.Profile(ctx, sess)
		record("profile", err)
		profile = p
		return nil
	})
	g.Go(func() error {
		m, err := s.Backend.Meals(ctx, sess, date)
		record("meals", err)
		meals = m
		return nil
	})
	g.Go(func() error {
		w, err := s.Backend.Water(ctx, sess, date)
		record("water", err)
		water = w
		return nil
	})
	g.Go(func() error {
		w, err := s.Backend.WorkoutHistory(ctx, sess)
		record("workouts", err)
		workouts = w
		return nil
	})
	g.Wait()

	meals.Normalize()
	o := &Overview{
		Date:        date,
		Profile:     profile,
		Meals:       meals,
		Calories:    meals.Total(),
		CalorieGoal: profile.CalorieGoalOrDefault(),
		Water:       water,
		WaterGoal:   profile.WaterGoalOrDefault(),
	}
	o.CaloriePercent = charts.Progress(float64(o.Calories), o.CalorieGoal)
	o.WaterPercent = charts.Progress(o.Water, o.WaterGoal)
	if w, ok := charts.WorkoutOn(workouts, date); ok {
		o.Workout = &w
	}
	return o, errors.Join(errs...)
}

// CalorieHistory returns the chart series for every logged day against the
// user's calorie goal.
func (s *Services) CalorieHistory(ctx context.Context, sess *model.Session) ([]charts.Point, float64, error) {
	var (
		g       errgroup.Group
		profile *model.Profile
		history []model.MealHistoryEntry
	)
	g.Go(func() error {
		p, err := s.Backend.Profile(ctx, sess)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		h, err := s.Backend.MealHistory(ctx, sess)
		if err != nil {
			return fmt.Errorf("loading meal history: %w", err)
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	goal := profile.CalorieGoalOrDefault()
	return charts.CalorieSeries(history, goal), goal, nil
}

// AddFood logs quantity grams of food in slot on date and saves the day.
// The day is re-read first because the backend replaces it whole.
func (s *Services) AddFood(ctx context.Context, sess *model.Session, date string, slot model.MealSlot, food model.Food, quantity float64) (model.MealItem, error) {
	if _, err := diary.ParseSlot(string(slot)); err != nil {
		return model.MealItem{}, err
	}
	if _, err := diary.NewMealItem(food, quantity); err != nil {
		return model.MealItem{}, err
	}

	meals, err := s.Backend.Meals(ctx, sess, date)
	if err != nil {
		return model.MealItem{}, err
	}
	draft := diary.NewDraft(date, meals)
	item, err := draft.Add(slot, food, quantity)
	if err != nil {
		return model.MealItem{}, err
	}
	if err := s.Backend.SaveMeals(ctx, sess, draft.Date, draft.Meals); err != nil {
		return model.MealItem{}, err
	}
	return item, nil
}

// AddWater logs ml of water today and returns the day's total in liters.
func (s *Services) AddWater(ctx context.Context, sess *model.Session, ml int) (float64, error) {
	if ml <= 0 || ml > MaxWaterPortion {
		return 0, ErrInvalidWater
	}
	return s.Backend.LogWater(ctx, sess, s.Today(), float64(ml)/1000)
}

// LogWorkout logs the draft as today's workout.
func (s *Services) LogWorkout(ctx context.Context, sess *model.Session, draft *diary.WorkoutDraft) (model.Workout, error) {
	w, err := draft.Workout(s.Today())
	if err != nil {
		return model.Workout{}, err
	}
	if err := s.Backend.LogWorkout(ctx, sess, w); err != nil {
		return model.Workout{}, err
	}
	return w, nil
}
