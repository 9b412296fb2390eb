package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"complaint-desk/internal/api"
	"complaint-desk/internal/model"
)

var errNotLoggedIn = errors.New("not logged in; run `complaint-desk login` (or set email and password in the config)")

func (app *App) client() (*api.Client, error) {
	return api.New(app.cfg.ServerURL, app.cfg.RequestTimeout, api.WithLogger(app.log.Named("api")))
}

// session returns a client with a live session. A saved session is tried
// first; when it is missing or rejected, configured credentials are used to
// log in again.
func (app *App) session(ctx context.Context) (*api.Client, model.User, error) {
	c, err := app.client()
	if err != nil {
		return nil, model.User{}, err
	}
	if token := app.readSession(); token != "" {
		c.SetSessionToken(token)
		u, err := c.Me(ctx)
		if err == nil {
			return c, u, nil
		}
		if !api.IsUnauthorized(err) {
			return nil, model.User{}, err
		}
	}

	if strings.TrimSpace(app.cfg.Email) == "" || app.cfg.Password == "" {
		return nil, model.User{}, errNotLoggedIn
	}
	u, err := c.Login(ctx, app.cfg.Email, app.cfg.Password)
	if err != nil {
		return nil, model.User{}, err
	}
	if err := app.saveSession(c); err != nil {
		return nil, model.User{}, err
	}
	return c, u, nil
}

func (app *App) readSession() string {
	b, err := os.ReadFile(app.SessionFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (app *App) saveSession(c *api.Client) error {
	token := c.SessionToken()
	if token == "" {
		return errors.New("login succeeded but no session cookie was set")
	}
	if err := os.MkdirAll(filepath.Dir(app.SessionFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(app.SessionFile, []byte(token+"\n"), 0o600)
}

func (app *App) clearSession() error {
	err := os.Remove(app.SessionFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
