package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Change is the payload of a complaints.changed event.
type Change struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// Event is one websocket frame sent to subscribers.
type Event struct {
	Type string `json:"type"`
	Data Change `json:"data"`
}

const (
	pingEvery   = 20 * time.Second
	pongWait    = 60 * time.Second
	writeWait   = 10 * time.Second
	readLimitWS = 1024
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin (the TUI sends none) and
// browser requests whose Origin host matches the Host header exactly.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, strings.TrimSpace(r.Host))
}

// hub fans change events out to every connected websocket.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{clients: map[*websocket.Conn]struct{}{}, log: log}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) broadcast(typ string, change Change) int {
	b, err := json.Marshal(Event{Type: typ, Data: change})
	if err != nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
			_ = c.Close()
			delete(h.clients, c)
			continue
		}
		n++
	}
	h.log.Debug("broadcast", zap.String("type", typ), zap.String("id", change.ID), zap.Int("clients", n))
	return n
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Close()
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("ws connected", zap.Int("clients", total))

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingEvery)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Clients never send anything meaningful; the read loop only services
	// pongs and notices the close.
	c.SetReadLimit(readLimitWS)
	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.remove(c)
			h.log.Debug("ws disconnected", zap.Int("clients", h.count()))
			return
		}
	}
}
