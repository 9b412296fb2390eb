// Package api is the HTTP client for the complaint backend.
//
// One Client holds a cookie jar for the session and a pooled *http.Client, so
// repeated actions from the dashboard reuse connections. Client implements
// action.Backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SessionCookie must match the cookie name the backend issues.
const SessionCookie = "complaint_desk_session"

const maxResponseBody = 1 << 20

type Client struct {
	base *url.URL
	jar  http.CookieJar
	http *http.Client
	log  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the pooled client. Its Jar is overwritten with the
// session jar.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewHTTPClient returns a client with a keep-alive connection pool.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api: empty server url")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported scheme %q", u.Scheme)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{base: u, jar: jar, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(timeout)
	}
	c.http.Jar = jar
	return c, nil
}

func (c *Client) BaseURL() string { return c.base.String() }

// SessionToken returns the current session cookie value, or "".
func (c *Client) SessionToken() string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken installs a previously saved session.
func (c *Client) SetSessionToken(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	c.jar.SetCookies(c.base, []*http.Cookie{{Name: SessionCookie, Value: token, Path: "/"}})
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// StatusError is a non-2xx answer from a non-action endpoint.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

// do sends method+path with an optional JSON body and returns the status and
// raw body.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

// call is do plus envelope handling for the non-action endpoints: non-2xx
// becomes *StatusError carrying the server message when there is one.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	status, raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &StatusError{Status: status, Message: messageOf(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func messageOf(raw []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &env) != nil {
		return ""
	}
	return strings.TrimSpace(env.Message)
}
