package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/erazemk/healthpilot/internal/model"
)

// Water returns the liters drunk on date.
func (c *Client) Water(ctx context.Context, s *model.Session, date string) (float64, error) {
	token, err := c.Authorize(s)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Amount model.Number `json:"amount"`
	}
	q := url.Values{"username": {s.Username}, "date": {date}}
	if err := c.do(ctx, http.MethodGet, "/api/water/get", q, token, nil, &resp); err != nil {
		return 0, err
	}
	return float64(resp.Amount), nil
}

// LogWater adds liters to date and returns the new total for the day.
func (c *Client) LogWater(ctx context.Context, s *model.Session, date string, liters float64) (float64, error) {
	token, err := c.Authorize(s)
	if err != nil {
		return 0, err
	}

	body := struct {
		Username string  `json:"username"`
		Date     string  `json:"date"`
		Amount   float64 `json:"amount"`
	}{s.Username, date, liters}

	var resp struct {
		Entry struct {
			Amount model.Number `json:"amount"`
		} `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/water/log", nil, token, body, &resp); err != nil {
		return 0, err
	}
	return float64(resp.Entry.Amount), nil
}
