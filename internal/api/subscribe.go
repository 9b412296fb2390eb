package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one change notification from the backend's /ws feed.
type Event struct {
	Type string `json:"type"`
	Data struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	} `json:"data"`
}

// Subscribe dials the change feed with the current session. The returned
// channel is closed when ctx is cancelled or the connection drops.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"

	d := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
		Jar:              c.jar,
	}
	// The jar is keyed by the http(s) URL; gorilla looks cookies up with the
	// ws URL, so pass the session header explicitly as well.
	hdr := http.Header{}
	if tok := c.SessionToken(); tok != "" {
		hdr.Set("Cookie", (&http.Cookie{Name: SessionCookie, Value: tok}).String())
		d.Jar = nil
	}
	conn, resp, err := d.DialContext(ctx, u.String(), hdr)
	if err != nil {
		if resp != nil && resp.StatusCode != 0 {
			return nil, &StatusError{Status: resp.StatusCode}
		}
		return nil, err
	}

	out := make(chan Event, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					c.log.Debug("change feed closed", zap.Error(err))
				}
				return
			}
			var ev Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
