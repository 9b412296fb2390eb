package api

import (
	"context"
	"net/http"
	"strings"

	"complaint-desk/internal/model"
)

type userEnvelope struct {
	Success bool       `json:"success"`
	User    model.User `json:"user"`
}

// Login authenticates and stores the session cookie in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	var out userEnvelope
	err := c.call(ctx, http.MethodPost, "/login", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, &out)
	return out.User, err
}

// Signup registers a regular (non-admin) user and logs in.
func (c *Client) Signup(ctx context.Context, email, name, password string) (model.User, error) {
	var out userEnvelope
	err := c.call(ctx, http.MethodPost, "/signup", map[string]string{
		"email":    strings.TrimSpace(email),
		"name":     strings.TrimSpace(name),
		"password": password,
	}, &out)
	return out.User, err
}

// Me returns the session user. It fails with a 401 StatusError when the
// session is missing or expired.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out userEnvelope
	err := c.call(ctx, http.MethodGet, "/api/me", nil, &out)
	return out.User, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/logout", nil, nil)
}

// List returns the complaints visible to the session user, newest first.
func (c *Client) List(ctx context.Context) ([]model.Complaint, error) {
	var out struct {
		Complaints []model.Complaint `json:"complaints"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/complaints", nil, &out); err != nil {
		return nil, err
	}
	return out.Complaints, nil
}

// Submit files a new complaint. Only non-admin users may submit.
func (c *Client) Submit(ctx context.Context, text string) (model.Complaint, error) {
	var out struct {
		Complaint model.Complaint `json:"complaint"`
	}
	err := c.call(ctx, http.MethodPost, "/submit_complaint_ajax", map[string]string{"complaint": text}, &out)
	return out.Complaint, err
}

func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}
