// Package backend is the client for the application backend that stores
// profiles, meals, water intake and workouts.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/healthpilot/internal/auth"
	"github.com/erazemk/healthpilot/internal/model"
)

// DefaultTimeout bounds a single backend call when no client is supplied.
const DefaultTimeout = 10 * time.Second

const maxResponseBody = 8 << 20

// ErrNotLoggedIn is returned before any network call when the session is
// missing or its backend token has expired.
var ErrNotLoggedIn = errors.New("not logged in")

// Error is a failure reported by the backend, either as a non-2xx status or
// as an envelope with success set to false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

// envelope is the part every backend response shares.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// New creates a backend client. A nil http client gets DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		now:     time.Now,
	}
}

// Authorize returns the bearer token of s, or ErrNotLoggedIn.
func (c *Client) Authorize(s *model.Session) (string, error) {
	if !s.Valid() || auth.BackendTokenExpired(s.AccessToken, c.now()) {
		return "", ErrNotLoggedIn
	}
	return s.AccessToken, nil
}

// do sends one request and decodes the response into out, which may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("backend call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", method, path, err)
	}

	var env envelope
	decoded := len(bytes.TrimSpace(data)) > 0 && json.Unmarshal(data, &env) == nil

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if !decoded {
		return fmt.Errorf("%s %s: response is not JSON", method, path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
