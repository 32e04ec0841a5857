package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/healthpilot/internal/config"
	"github.com/erazemk/healthpilot/internal/model"
)

const (
	foodService   = "edamam"
	foodParsePath = "/api/food-database/v2/parser"
	maxFoodBody   = 4 << 20
)

// FoodClient searches the Edamam food database.
type FoodClient struct {
	baseURL string
	appID   string
	appKey  string
	limit   int
	client  *http.Client
}

// NewFoodClient creates a food search client. A nil http client gets the
// default timeout; limit <= 0 returns every hint.
func NewFoodClient(api config.FoodAPI, limit int, client *http.Client) *FoodClient {
	return &FoodClient{
		baseURL: strings.TrimRight(api.URL, "/"),
		appID:   api.AppID,
		appKey:  api.AppKey,
		limit:   limit,
		client:  httpClient(client),
	}
}

type parserResponse struct {
	Hints []struct {
		Food struct {
			FoodID    string             `json:"foodId"`
			Label     string             `json:"label"`
			Category  string             `json:"category"`
			Image     string             `json:"image"`
			Nutrients map[string]float64 `json:"nutrients"`
		} `json:"food"`
	} `json:"hints"`
}

// Search returns foods matching query, each with nutrients per 100 g.
// A blank query returns no foods without calling the service.
func (c *FoodClient) Search(ctx context.Context, query string) ([]model.Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Food{}, nil
	}
	if c.appID == "" || c.appKey == "" {
		return nil, fmt.Errorf("searching foods: %w", ErrNotConfigured)
	}

	q := url.Values{}
	q.Set("ingr", query)
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+foodParsePath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building food search: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s parser: %w", foodService, err)
	}
	defer resp.Body.Close()

	body, err := readBody(foodService, resp, maxFoodBody)
	if err != nil {
		return nil, err
	}

	var pr parserResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decoding %s parser response: %w", foodService, err)
	}

	foods := make([]model.Food, 0, len(pr.Hints))
	seen := make(map[string]bool, len(pr.Hints))
	for _, h := range pr.Hints {
		f := h.Food
		// Hints without an id are told apart by label.
		key := "id:" + f.FoodID
		if f.FoodID == "" {
			key = "label:" + strings.ToLower(f.Label)
		}
		if f.Label == "" || seen[key] {
			continue
		}
		seen[key] = true
		foods = append(foods, model.Food{
			ID:       f.FoodID,
			Label:    f.Label,
			Category: f.Category,
			Image:    f.Image,
			Nutrients: model.Nutrients{
				Calories: f.Nutrients["ENERC_KCAL"],
				Protein:  f.Nutrients["PROCNT"],
				Fat:      f.Nutrients["FAT"],
				Carbs:    f.Nutrients["CHOCDF"],
				Fiber:    f.Nutrients["FIBTG"],
			},
		})
		if c.limit > 0 && len(foods) == c.limit {
			break
		}
	}
	return foods, nil
}
