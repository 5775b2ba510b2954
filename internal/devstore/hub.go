package devstore

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// Event types pushed to clients
const (
	EventPostCreated   = "post_created"
	EventPostDeleted   = "post_deleted"
	EventPostLiked     = "post_liked"
	EventPostCommented = "post_commented"
	EventCommentLiked  = "comment_liked"

	eventHeartbeat = "heartbeat"
	eventPong      = "pong"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
	maxMessageSize = 64 * 1024
)

// Event is the {type, payload} frame clients receive
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type incoming struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type hubClient struct {
	userID string
	conn   *websocket.Conn
	send   chan Event
}

// Hub fans events out to every connected websocket client
type Hub struct {
	log     *zap.Logger
	metrics *Metrics

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	closed  bool
}

// NewHub creates an empty hub
func NewHub(log *zap.Logger, metrics *Metrics) *Hub {
	return &Hub{log: log, metrics: metrics, clients: make(map[*hubClient]struct{})}
}

// Broadcast queues ev for every client. Clients whose buffer is full miss
// the event.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	ev := Event{Type: eventType, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.log.Warn("Dropping event for slow client", zap.String("user", c.userID), zap.String("type", eventType))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.metrics.WebSocketClients.Inc()
	return true
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.metrics.WebSocketClients.Dec()
	}
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close(websocket.StatusGoingAway, "server shutdown")
	}
}

// serveWS upgrades an authenticated request and pumps events until the
// client goes away
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET to open a websocket")
		return
	}
	user, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := &hubClient{userID: user.ID, conn: conn, send: make(chan Event, sendBufferSize)}
	if !s.hub.register(client) {
		_ = conn.Close(websocket.StatusGoingAway, "server shutdown")
		return
	}
	s.log.Debug("WebSocket connected", zap.String("user", user.ID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.hub.writePump(ctx, client)

	s.hub.readPump(ctx, client)
	s.hub.unregister(client)
	_ = conn.Close(websocket.StatusNormalClosure, "")
	s.log.Debug("WebSocket disconnected", zap.String("user", user.ID))
}

// writeError answers a request that never reached gin
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}

func (h *Hub) readPump(ctx context.Context, c *hubClient) {
	for {
		var msg incoming
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				h.log.Debug("WebSocket read ended", zap.String("user", c.userID), zap.Error(err))
			}
			return
		}
		if msg.Type == eventHeartbeat {
			h.mu.RLock()
			if _, ok := h.clients[c]; ok {
				select {
				case c.send <- Event{Type: eventPong}:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *hubClient) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := wsjson.Write(writeCtx, c.conn, ev)
			cancel()
			if err != nil {
				h.log.Debug("WebSocket write failed", zap.String("user", c.userID), zap.Error(err))
				return
			}
		}
	}
}
