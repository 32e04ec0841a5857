package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erazemk/healthpilot/internal/model"
)

// LogWorkout records a new workout for the session user.
func (c *Client) LogWorkout(ctx context.Context, s *model.Session, w model.Workout) error {
	token, err := c.Authorize(s)
	if err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}
	w.Username = s.Username
	w.ID = ""
	return c.do(ctx, http.MethodPost, "/api/workout/log", nil, token, w, nil)
}

// WorkoutHistory lists the session user's workouts.
func (c *Client) WorkoutHistory(ctx context.Context, s *model.Session) ([]model.Workout, error) {
	token, err := c.Authorize(s)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Workouts []model.Workout `json:"workouts"`
	}
	path := "/api/workout/history/" + url.PathEscape(s.Username)
	if err := c.do(ctx, http.MethodGet, path, nil, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Workouts == nil {
		resp.Workouts = []model.Workout{}
	}
	return resp.Workouts, nil
}

// UpdateWorkout replaces a logged workout.
func (c *Client) UpdateWorkout(ctx context.Context, s *model.Session, w model.Workout) error {
	token, err := c.Authorize(s)
	if err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("workout id is required")
	}
	path := "/api/workout/" + url.PathEscape(s.Username) + "/" + url.PathEscape(w.ID)
	return c.do(ctx, http.MethodPut, path, nil, token, w, nil)
}

// DeleteWorkout removes a logged workout.
func (c *Client) DeleteWorkout(ctx context.Context, s *model.Session, id string) error {
	token, err := c.Authorize(s)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("workout id is required")
	}
	return c.do(ctx, http.MethodDelete, "/api/workout/"+url.PathEscape(id), nil, token, nil, nil)
}
