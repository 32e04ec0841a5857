package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/healthpilot/internal/config"
	"github.com/erazemk/healthpilot/internal/model"
)

const (
	exerciseService = "exercisedb"
	// MaxExercises is how many candidates a search returns.
	MaxExercises    = 5
	maxExerciseBody = 4 << 20
	// MaxAssetSize caps a downloaded demonstration asset.
	MaxAssetSize = 8 << 20
)

var (
	// ErrAssetTooLarge is returned when an asset exceeds MaxAssetSize.
	ErrAssetTooLarge = errors.New("asset exceeds size limit")
	// ErrAssetURL is returned for an asset URL that is not absolute http(s)
	// or names a host outside the configured asset hosts.
	ErrAssetURL = errors.New("invalid asset URL")
)

// ExerciseClient searches ExerciseDB through RapidAPI.
type ExerciseClient struct {
	baseURL string
	key     string
	host    string
	assets  []string
	client  *http.Client
	fetcher *http.Client
}

// NewExerciseClient creates an exercise search client.
func NewExerciseClient(api config.ExerciseAPI, client *http.Client) *ExerciseClient {
	c := &ExerciseClient{
		baseURL: strings.TrimRight(api.URL, "/"),
		key:     api.Key,
		host:    api.Host,
		assets:  api.AssetHosts,
		client:  httpClient(client),
	}

	// Redirects must stay on asset hosts too.
	fetcher := *c.client
	fetcher.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		if !c.assetHost(req.URL) {
			return fmt.Errorf("%w: redirect to host %q", ErrAssetURL, req.URL.Host)
		}
		return nil
	}
	c.fetcher = &fetcher
	return c
}

// Search returns up to MaxExercises exercises whose name contains name.
func (c *ExerciseClient) Search(ctx context.Context, name string) ([]model.ExerciseInfo, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return []model.ExerciseInfo{}, nil
	}
	if c.key == "" {
		return nil, fmt.Errorf("searching exercises: %w", ErrNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/exercises/name/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("building exercise search: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.key)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", exerciseService, err)
	}
	defer resp.Body.Close()

	body, err := readBody(exerciseService, resp, maxExerciseBody)
	if err != nil {
		return nil, err
	}

	var found []model.ExerciseInfo
	if err := json.Unmarshal(body, &found); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", exerciseService, err)
	}
	if found == nil {
		found = []model.ExerciseInfo{}
	}
	if len(found) > MaxExercises {
		found = found[:MaxExercises]
	}
	return found, nil
}

// Asset downloads a demonstration asset such as an exercise GIF.
func (c *ExerciseClient) Asset(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrAssetURL, rawURL)
	}
	if !c.assetHost(u) {
		return nil, fmt.Errorf("%w: host %q is not an asset host", ErrAssetURL, u.Host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building asset request: %w", err)
	}

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > MaxAssetSize {
		return nil, ErrAssetTooLarge
	}
	data, err := readBody("asset", resp, MaxAssetSize+1)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxAssetSize {
		return nil, ErrAssetTooLarge
	}
	return data, nil
}

// assetHost reports whether u points at one of the configured asset hosts.
// Entries without a port match any port on that host name.
func (c *ExerciseClient) assetHost(u *url.URL) bool {
	for _, allowed := range c.assets {
		allowed = strings.ToLower(allowed)
		if allowed == strings.ToLower(u.Host) {
			return true
		}
		if !strings.Contains(allowed, ":") && allowed == strings.ToLower(u.Hostname()) {
			return true
		}
	}
	return false
}
