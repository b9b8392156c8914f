package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

// Hub fans events out to every connected websocket client.
type Hub struct {
	upgrader websocket.Upgrader
	messages chan Event

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub returns a hub buffering up to buffer undelivered events.
func NewHub(buffer int) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		messages: make(chan Event, buffer),
		clients:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Publish queues ev for broadcast. Events are dropped when the buffer is full
// so a slow client never blocks the session.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case h.messages <- ev:
	default:
		slog.Warn("Event buffer full, dropping event", "type", ev.Type)
	}
}

// Run broadcasts queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-h.messages:
			payload, err := json.Marshal(ev)
			if err != nil {
				slog.Error("Unable to encode event", "type", ev.Type, "err", err)
				continue
			}
			var stale []*websocket.Conn
			for conn, writeMu := range h.snapshot() {
				if err := writeMessage(conn, writeMu, websocket.TextMessage, payload); err != nil {
					stale = append(stale, conn)
				}
			}
			for _, conn := range stale {
				h.removeClient(conn)
			}
		}
	}
}

// ServeHTTP upgrades the request to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("Websocket upgrade failed", "err", err)
		return
	}
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = writeMu
	h.mu.Unlock()

	hello, _ := json.Marshal(Event{Type: TypeConnected, Time: time.Now()})
	_ = writeMessage(conn, writeMu, websocket.TextMessage, hello)

	go func() {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(pingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := writeMessage(conn, writeMu, websocket.PingMessage, nil); err != nil {
						_ = conn.Close()
						return
					}
				}
			}
		}()
		defer close(done)
		defer h.removeClient(conn)
		// Clients only listen; reading keeps pong and close frames flowing.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// snapshot copies the client set so writes happen without holding h.mu.
func (h *Hub) snapshot() map[*websocket.Conn]*sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, writeMu := range h.clients {
		clients[conn] = writeMu
	}
	return clients
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func writeMessage(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
