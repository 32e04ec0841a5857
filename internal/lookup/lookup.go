// Package lookup queries the third-party food and exercise databases that
// back the search-as-you-type boxes.
package lookup

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single lookup when no client is supplied.
const DefaultTimeout = 10 * time.Second

// ErrNotConfigured is returned when a lookup has no API credentials.
var ErrNotConfigured = errors.New("lookup credentials are not configured")

// StatusError is a non-2xx answer from a lookup service.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API error %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.Status, e.Body)
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// readBody reads at most limit bytes of a response and converts non-2xx
// statuses into a *StatusError.
func readBody(service string, resp *http.Response, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Service: service, Status: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
