// Package ws pushes night-state snapshots to connected UI clients over
// websockets. The hub is broadcast-only: clients never send state upstream,
// they mutate through the HTTP API and receive the resulting snapshots here.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kabile/matchnight/pkg/logger"
	"github.com/kabile/matchnight/pkg/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin browsers only; the UI is served next to the API.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || websocket.IsWebSocketUpgrade(r)
	},
}

// Hub maintains the set of active clients and broadcasts snapshots to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	closed  bool

	log logger.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     logger.Named("ws"),
	}
}

// HandleWS upgrades GET /ws requests and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan any, clientSendBuffer),
	}
	h.register(r.Context(), c)
	go c.writePump()
	go c.readPump()
}

// Broadcast queues v for delivery to every connected client. Clients that
// cannot keep up are dropped rather than allowed to stall the rest.
func (h *Hub) Broadcast(v any) {
	h.mu.RLock()
	stalled := make([]*client, 0)
	for _, c := range h.clients {
		select {
		case c.send <- v:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.unregister(context.Background(), c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
	}
	metrics.UpdateWSClients(0)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(ctx context.Context, c *client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
		return
	}
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	metrics.UpdateWSClients(n)
	h.log.Debug(ctx, "websocket client connected",
		logger.String("client", c.id),
		logger.Int("clients", n),
	)
}

func (h *Hub) unregister(ctx context.Context, c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	n := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	metrics.UpdateWSClients(n)
	h.log.Debug(ctx, "websocket client disconnected",
		logger.String("client", c.id),
		logger.Int("clients", n),
	)
}
