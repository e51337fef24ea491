package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/usecase"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcast runs on the session's mutation path, so a stalled subscriber
// must never block it for longer than this before being dropped
const writeTimeout = 5 * time.Second

// Hub fans session events out to WebSocket subscribers, keyed by session
// ID. Subscribers are read-only: inbound frames are discarded.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{connections: make(map[string][]*websocket.Conn)}
}

// Subscribe upgrades the request and registers the client for a session's
// events until the connection drops
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("[WS] Upgrade failed: %v\n", err)
		return
	}

	h.mu.Lock()
	h.connections[sessionID] = append(h.connections[sessionID], conn)
	h.mu.Unlock()

	// Drain the connection; unregister when the client goes away
	go func() {
		defer h.remove(sessionID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends an event to every subscriber of its session
func (h *Hub) Broadcast(ev usecase.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		fmt.Printf("[WS] Failed to marshal event: %v\n", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, len(h.connections[ev.SessionID]))
	copy(conns, h.connections[ev.SessionID])
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(ev.SessionID, conn)
		}
	}

	if ev.Type == usecase.EventSessionClosed {
		h.CloseSession(ev.SessionID)
	}
}

// CloseSession disconnects every subscriber of a session
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	conns := h.connections[sessionID]
	delete(h.connections, sessionID)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// SubscriberCount returns the number of subscribers for a session
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}

func (h *Hub) remove(sessionID string, conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[sessionID]
	for i, c := range conns {
		if c == conn {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
	}
}
