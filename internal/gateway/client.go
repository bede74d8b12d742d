package gateway

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
)

// writeWait bounds every frame write so a stalled peer cannot hold the
// client's write lock.
const writeWait = 10 * time.Second

// ErrClientClosed is returned when sending to a closed connection.
var ErrClientClosed = errors.New("client connection closed")

// Client is a WebSocket connection that completed the connect handshake.
type Client struct {
	ConnID      string
	Info        ClientInfo
	Socket      *websocket.Conn
	ConnectedAt time.Time

	mu     sync.Mutex // serializes writes and guards closed
	closed bool
}

// NewClient wraps a connection after a successful handshake.
func NewClient(conn *websocket.Conn, info ClientInfo) *Client {
	return &Client{
		ConnID:      uuid.New().String(),
		Info:        info,
		Socket:      conn,
		ConnectedAt: time.Now(),
	}
}

// write runs fn holding the write lock with a fresh write deadline.
func (c *Client) write(fn func(*websocket.Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.Socket == nil {
		return ErrClientClosed
	}
	_ = c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
	return fn(c.Socket)
}

// Send writes a frame to the client. Safe for concurrent use.
func (c *Client) Send(frame Frame) error {
	return c.write(func(ws *websocket.Conn) error { return ws.WriteJSON(frame) })
}

// SendEvent sends a named event with payload.
func (c *Client) SendEvent(event string, payload any, seq int64) error {
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		return err
	}
	return c.Send(f)
}

func (c *Client) sendPrepared(pm *websocket.PreparedMessage) error {
	return c.write(func(ws *websocket.Conn) error { return ws.WritePreparedMessage(pm) })
}

// Respond sends a success response for the given request ID.
func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// RespondError sends an error response for the given request ID.
func (c *Client) RespondError(reqID string, errShape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, errShape))
}

// ReadFrame reads the next frame from the socket. Only the read loop may
// call it.
func (c *Client) ReadFrame() (Frame, error) {
	_, msg, err := c.Socket.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Close closes the connection. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.Socket == nil {
		return nil
	}
	return c.Socket.Close()
}

// ClientRegistry tracks connected clients by connection ID.
type ClientRegistry struct {
	clients *xsync.MapOf[string, *Client]
	log     *logging.Logger
}

// NewClientRegistry creates an empty client registry.
func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: xsync.NewMapOf[string, *Client](),
		log:     log,
	}
}

// Add registers a connected client.
func (r *ClientRegistry) Add(c *Client) {
	r.clients.Store(c.ConnID, c)
	r.log.Info().
		Str("connId", c.ConnID).
		Str("client", c.Info.ID).
		Str("platform", c.Info.Platform).
		Msg("client connected")
}

// Remove unregisters a client by connection ID.
func (r *ClientRegistry) Remove(connID string) {
	c, ok := r.clients.LoadAndDelete(connID)
	if !ok {
		return
	}
	r.log.Info().
		Str("connId", connID).
		Dur("connected", time.Since(c.ConnectedAt)).
		Msg("client disconnected")
}

// Get returns a client by connection ID.
func (r *ClientRegistry) Get(connID string) (*Client, bool) {
	return r.clients.Load(connID)
}

// Count returns the number of connected clients.
func (r *ClientRegistry) Count() int {
	return r.clients.Size()
}

// Broadcast pushes an event to every connected client and returns how many
// received it. The frame is encoded once and shared across connections.
func (r *ClientRegistry) Broadcast(event string, payload any, seq int64) int {
	if r.clients.Size() == 0 {
		return 0
	}
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		r.log.Warn().Err(err).Str("event", event).Msg("encode broadcast event failed")
		return 0
	}
	data, err := json.Marshal(f)
	if err != nil {
		r.log.Warn().Err(err).Str("event", event).Msg("encode broadcast event failed")
		return 0
	}
	pm, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		r.log.Warn().Err(err).Str("event", event).Msg("prepare broadcast event failed")
		return 0
	}

	delivered := 0
	r.clients.Range(func(id string, c *Client) bool {
		if err := c.sendPrepared(pm); err != nil {
			r.log.Warn().Err(err).Str("connId", id).Str("event", event).Msg("broadcast send failed")
			return true
		}
		delivered++
		return true
	})
	return delivered
}

// CloseAll closes and removes every client.
func (r *ClientRegistry) CloseAll() {
	r.clients.Range(func(id string, c *Client) bool {
		_ = c.Close()
		r.clients.Delete(id)
		return true
	})
}
