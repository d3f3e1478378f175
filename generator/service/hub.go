package service

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yaron8/netwatch/logi"
	"github.com/yaron8/netwatch/telemetrics"
)

const writeTimeout = 5 * time.Second

// client is one dashboard connection. Writes are serialized per connection.
type client struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(env telemetrics.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(env)
}

// Hub tracks dashboard connections keyed by session id and fans events out to them.
type Hub struct {
	upgrader  websocket.Upgrader
	mu        sync.RWMutex
	clients   map[string]*client
	onConnect func()
	logger    *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: map[string]*client{},
		logger:  logi.GetLogger(),
	}
}

// OnConnect registers fn to run after every successful upgrade.
func (h *Hub) OnConnect(fn func()) {
	h.mu.Lock()
	h.onConnect = fn
	h.mu.Unlock()
}

// HandleSocket upgrades the request and registers the connection under a fresh session id.
func (h *Hub) HandleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("socket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{id: uuid.New().String(), conn: conn}
	h.mu.Lock()
	h.clients[c.id] = c
	onConnect := h.onConnect
	h.mu.Unlock()

	h.logger.Info("client connected", "sid", c.id, "remote", r.RemoteAddr)
	if onConnect != nil {
		onConnect()
	}
	go h.readLoop(c)
}

// Broadcast sends env to every client and returns how many received it.
// Clients that fail a write are dropped.
func (h *Hub) Broadcast(env telemetrics.Envelope) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.send(env); err != nil {
			h.logger.Warn("send failed, dropping client", "sid", c.id, "event", env.Event, "error", err)
			h.remove(c)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = map[string]*client{}
	h.mu.Unlock()
	for _, c := range clients {
		_ = c.conn.Close()
	}
}

// readLoop drains inbound frames so control messages are processed; dashboards send nothing.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()
	_ = c.conn.Close()
	if ok {
		h.logger.Info("client disconnected", "sid", c.id)
	}
}
