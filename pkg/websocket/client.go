package websocket

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
	"github.com/tathya/tathya-cli/pkg/logger"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypePostCreated   MessageType = "post_created"
	MessageTypePostDeleted   MessageType = "post_deleted"
	MessageTypePostLiked     MessageType = "post_liked"
	MessageTypePostCommented MessageType = "post_commented"
	MessageTypeCommentLiked  MessageType = "comment_liked"
	MessageTypeHeartbeat     MessageType = "heartbeat"
	MessageTypePong          MessageType = "pong"
	MessageTypeError         MessageType = "error"

	// MessageTypeAny subscribes to every message
	MessageTypeAny MessageType = ""
)

// Message is one server event
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("empty %s payload", m.Type)
	}
	return json.Unmarshal(m.Payload, v)
}

// LikePayload carries a post_liked or comment_liked event
type LikePayload struct {
	PostID    string   `json:"postId"`
	CommentID string   `json:"commentId,omitempty"`
	ReplyID   string   `json:"replyId,omitempty"`
	LikedBy   []string `json:"likedBy"`
	LikeCount int      `json:"likeCount"`
}

// PostPayload carries post_created, post_deleted and post_commented events
type PostPayload struct {
	PostID      string `json:"postId"`
	CommunityID string `json:"communityId,omitempty"`
}

// Config holds WebSocket client configuration
type Config struct {
	URL                  string
	ConnectTimeoutMs     int
	HeartbeatIntervalMs  int
	ReconnectBaseDelayMs int
	ReconnectMaxDelayMs  int
	MaxReconnectAttempts int
}

// DefaultConfig returns a development configuration
func DefaultConfig() Config {
	return Config{
		URL:                  "ws://localhost:5000/api/ws",
		ConnectTimeoutMs:     15000,
		HeartbeatIntervalMs:  30000,
		ReconnectBaseDelayMs: 2000,
		ReconnectMaxDelayMs:  30000,
		MaxReconnectAttempts: -1, // unlimited
	}
}

// ConfigFromURL returns the default configuration pointed at rawURL
func ConfigFromURL(rawURL string) Config {
	cfg := DefaultConfig()
	if rawURL != "" {
		cfg.URL = rawURL
	}
	return cfg
}

// Client manages WebSocket connections
type Client struct {
	config            Config
	conn              *websocket.Conn
	token             string
	state             atomic.Value // ConnectionState
	mu                sync.RWMutex
	writeMu           sync.Mutex
	reconnectAttempts int
	reconnectDelay    int
	listeners         map[MessageType]map[uint64]func(Message)
	nextListener      uint64
	listenersMu       sync.RWMutex
	ctx               context.Context
	cancel            context.CancelFunc
	statsLock         sync.RWMutex
	stats             ConnectionStats
}

// ConnectionState represents the state of the WebSocket connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		config:         config,
		listeners:      make(map[MessageType]map[uint64]func(Message)),
		ctx:            ctx,
		cancel:         cancel,
		reconnectDelay: config.ReconnectBaseDelayMs,
	}
	client.state.Store(StateDisconnected)
	return client
}

// SetAuthToken sets the JWT token for authentication
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Connect establishes the WebSocket connection
func (c *Client) Connect(token string) error {
	c.SetAuthToken(token)

	c.setState(StateConnecting)

	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		c.recordError(err.Error())
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.reconnectAttempts = 0
	c.reconnectDelay = c.config.ReconnectBaseDelayMs
	c.mu.Unlock()

	c.setState(StateConnected)
	c.recordConnected()

	go c.readLoop(conn)
	go c.heartbeatLoop()

	logger.Debug("WebSocket connected", "url", c.config.URL)
	return nil
}

// Disconnect closes the WebSocket connection and stops reconnecting
func (c *Client) Disconnect() error {
	c.cancel()

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateDisconnected)
	c.recordDisconnected()

	logger.Debug("WebSocket disconnected")
	return nil
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.getState() == StateConnected
}

// State returns the connection state
func (c *Client) State() ConnectionState {
	return c.getState()
}

// On subscribes to a message type. MessageTypeAny receives every message.
// The returned func unsubscribes.
func (c *Client) On(msgType MessageType, callback func(Message)) func() {
	c.listenersMu.Lock()
	c.nextListener++
	id := c.nextListener
	if c.listeners[msgType] == nil {
		c.listeners[msgType] = make(map[uint64]func(Message))
	}
	c.listeners[msgType][id] = callback
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners[msgType], id)
	}
}

// Send sends a message to the server
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	msg := struct {
		Type    MessageType `json:"type"`
		Payload interface{} `json:"payload,omitempty"`
	}{Type: msgType, Payload: payload}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.recordMessageSent()
	return nil
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

// Private methods

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", fmt.Errorf("invalid websocket url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	target, err := c.dialURL()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(c.config.ConnectTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, target, nil)
	return conn, err
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.recordError(err.Error())
			logger.Warn("WebSocket read error", "error", err)
			c.handleDisconnect(conn)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Dropping malformed websocket message", "error", err)
			continue
		}

		c.recordMessageReceived()
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	callbacks := make([]func(Message), 0, len(c.listeners[msg.Type])+len(c.listeners[MessageTypeAny]))
	for _, cb := range c.listeners[msg.Type] {
		callbacks = append(callbacks, cb)
	}
	if msg.Type != MessageTypeAny {
		for _, cb := range c.listeners[MessageTypeAny] {
			callbacks = append(callbacks, cb)
		}
	}
	c.listenersMu.RUnlock()

	for _, callback := range callbacks {
		go callback(msg)
	}
}

func (c *Client) heartbeatLoop() {
	interval := time.Duration(c.config.HeartbeatIntervalMs) * time.Millisecond
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if c.IsConnected() {
				if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
					logger.Debug("Failed to send heartbeat", "error", err)
				}
			}
		}
	}
}

func (c *Client) handleDisconnect(dead *websocket.Conn) {
	c.mu.Lock()
	if c.conn == dead {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateReconnecting)
	c.recordDisconnected()

	// Attempt reconnection with exponential backoff
	for {
		c.mu.RLock()
		attempts, delay := c.reconnectAttempts, c.reconnectDelay
		c.mu.RUnlock()

		if c.config.MaxReconnectAttempts >= 0 && attempts >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			return
		}

		backoff := time.Duration(delay) * time.Millisecond
		jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
		waitTime := backoff + jitter

		logger.Debug("Reconnecting WebSocket", "attempt", attempts+1, "wait_ms", waitTime.Milliseconds())

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(waitTime):
		}

		conn, err := c.dial()
		if err != nil {
			c.mu.Lock()
			c.reconnectAttempts++
			c.reconnectDelay = nextDelay(c.reconnectDelay, c.config.ReconnectMaxDelayMs)
			c.mu.Unlock()
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.reconnectAttempts = 0
		c.reconnectDelay = c.config.ReconnectBaseDelayMs
		c.mu.Unlock()

		c.setState(StateConnected)
		c.recordConnected()
		c.statsLock.Lock()
		c.stats.ReconnectCount++
		c.statsLock.Unlock()

		logger.Debug("WebSocket reconnected")

		go c.readLoop(conn)
		return
	}
}

// nextDelay doubles the delay, capped at max
func nextDelay(delay, limit int) int {
	if delay <= 0 {
		delay = 1
	}
	return int(math.Min(float64(delay*2), float64(limit)))
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(state)
}

func (c *Client) getState() ConnectionState {
	return c.state.Load().(ConnectionState)
}

func (c *Client) recordMessageReceived() {
	c.statsLock.Lock()
	c.stats.MessagesReceived++
	c.statsLock.Unlock()
}

func (c *Client) recordMessageSent() {
	c.statsLock.Lock()
	c.stats.MessagesSent++
	c.statsLock.Unlock()
}

func (c *Client) recordError(errMsg string) {
	c.statsLock.Lock()
	c.stats.LastError = errMsg
	c.statsLock.Unlock()
}

func (c *Client) recordConnected() {
	c.statsLock.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsLock.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsLock.Unlock()
}
