package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devswarm/devswarm/internal/orchestrator"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// changeEvent is the message pushed to WebSocket clients. The bus carries no
// payload, so clients re-query the REST API after each message.
type changeEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// WSHub fans bus notifications out to WebSocket clients.
type WSHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	signal  chan struct{}
	log     *slog.Logger
	unsub   func()
}

// NewWSHub creates a hub with no attached bus.
func NewWSHub(log *slog.Logger) *WSHub {
	return &WSHub{
		clients: make(map[*websocket.Conn]bool),
		signal:  make(chan struct{}, 1),
		log:     log.With("component", "ws"),
	}
}

// Attach subscribes the hub to a bus. Notifications are coalesced: a burst of
// writes wakes the broadcast loop once, which is enough since clients re-read
// full state anyway.
func (h *WSHub) Attach(bus *orchestrator.Bus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unsub != nil {
		h.unsub()
	}
	h.unsub = bus.Subscribe(func() {
		select {
		case h.signal <- struct{}{}:
		default:
		}
	})
}

// Run broadcasts until the context is cancelled.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.signal:
			h.broadcast()
		}
	}
}

func (h *WSHub) broadcast() {
	data, err := json.Marshal(changeEvent{Type: "state.changed", Timestamp: time.Now()})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *WSHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// HandleWebSocket upgrades HTTP connections and registers them with the hub.
func (h *WSHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain reads until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
