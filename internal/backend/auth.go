package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erazemk/healthpilot/internal/model"
)

type loginResponse struct {
	Token    string `json:"jwt_token"`
	Username string `json:"username"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	if email == "" || password == "" {
		return model.Session{}, fmt.Errorf("email and password are required")
	}

	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, "", body, &resp); err != nil {
		return model.Session{}, err
	}
	s := model.Session{Username: resp.Username, AccessToken: resp.Token}
	if !s.Valid() {
		return model.Session{}, fmt.Errorf("login response is missing the token or username")
	}
	return s, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return fmt.Errorf("username, email and password are required")
	}
	return c.do(ctx, http.MethodPost, "/api/auth/register", nil, "", reg, nil)
}

// Contact sends a message to the site owners. No session is needed.
func (c *Client) Contact(ctx context.Context, msg model.ContactMessage) error {
	if msg.Email == "" || msg.Message == "" {
		return fmt.Errorf("email and message are required")
	}
	return c.do(ctx, http.MethodPost, "/api/auth/contact", nil, "", msg, nil)
}

// Profile fetches the profile of the session user.
func (c *Client) Profile(ctx context.Context, s *model.Session) (*model.Profile, error) {
	token, err := c.Authorize(s)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Profile *model.Profile `json:"profile"`
	}
	q := url.Values{"username": {s.Username}}
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", q, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Profile == nil {
		return nil, &Error{Status: http.StatusOK, Message: "profile missing from response"}
	}
	return resp.Profile, nil
}

// UpdateProfile saves p as the session user's profile.
func (c *Client) UpdateProfile(ctx context.Context, s *model.Session, p *model.Profile) error {
	token, err := c.Authorize(s)
	if err != nil {
		return err
	}
	if p.Username == "" {
		p.Username = s.Username
	}
	return c.do(ctx, http.MethodPut, "/api/auth/updateprofile", nil, token, p, nil)
}
