package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/erazemk/healthpilot/internal/model"
)

// Meals fetches one day of meals. A day with nothing logged is empty, not
// an error, whether the backend answers 404 or omits the meals.
func (c *Client) Meals(ctx context.Context, s *model.Session, date string) (model.DayMeals, error) {
	token, err := c.Authorize(s)
	if err != nil {
		return model.DayMeals{}, err
	}

	var resp struct {
		Meals *model.DayMeals `json:"meals"`
	}
	q := url.Values{"username": {s.Username}, "date": {date}}
	err = c.do(ctx, http.MethodGet, "/api/meals/getmeal", q, token, nil, &resp)
	var be *Error
	if errors.As(err, &be) && be.Status == http.StatusNotFound {
		err = nil
	}
	if err != nil {
		return model.DayMeals{}, err
	}

	var meals model.DayMeals
	if resp.Meals != nil {
		meals = *resp.Meals
	}
	meals.Normalize()
	return meals, nil
}

// SaveMeals replaces one day of meals.
func (c *Client) SaveMeals(ctx context.Context, s *model.Session, date string, meals model.DayMeals) error {
	token, err := c.Authorize(s)
	if err != nil {
		return err
	}
	meals.Normalize()
	body := struct {
		Username string         `json:"username"`
		Date     string         `json:"date"`
		Meals    model.DayMeals `json:"meals"`
	}{s.Username, date, meals}
	return c.do(ctx, http.MethodPost, "/api/meals/addmeal", nil, token, body, nil)
}

// MealHistory fetches every logged day.
func (c *Client) MealHistory(ctx context.Context, s *model.Session) ([]model.MealHistoryEntry, error) {
	token, err := c.Authorize(s)
	if err != nil {
		return nil, err
	}

	var resp struct {
		History []model.MealHistoryEntry `json:"history"`
	}
	q := url.Values{"username": {s.Username}}
	if err := c.do(ctx, http.MethodGet, "/api/meals/gethistory", q, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.History == nil {
		resp.History = []model.MealHistoryEntry{}
	}
	return resp.History, nil
}
