// Package client owns the kiosk's persistent connection to the
// backend. It exposes connect/disconnect/send and delivers lifecycle
// changes plus decoded inbound messages on a single event channel, in
// arrival order. Nothing else in the program touches the websocket
// handle.
package client

import (
	"crypto/tls"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"airkiosk/protocol"
)

// Status is the lifecycle state of the backend connection.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// EventKind discriminates the two event groups on the channel.
type EventKind int

const (
	// EventStatus signals a connection lifecycle change.
	EventStatus EventKind = iota
	// EventMessage carries one decoded inbound message.
	EventMessage
)

// Event is one item on the client's event channel.
type Event struct {
	Kind    EventKind
	Status  Status
	Err     error
	Message protocol.Message
}

// Client is the kiosk's single connection to the backend. The conn
// handle is guarded by mu; the generation counter invalidates dials
// and read loops that outlive a disconnect, so a late frame from a
// cleared handle can never reach the event channel.
type Client struct {
	logger *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	status  Status
	lastErr error
	gen     int

	// writeMu serializes writers; the websocket allows only one
	// concurrent WriteMessage.
	writeMu sync.Mutex

	events chan Event
}

// New creates a disconnected client.
func New(logger *slog.Logger) *Client {
	return &Client{
		logger: logger,
		events: make(chan Event, 64),
	}
}

// Events returns the channel the owner drains for lifecycle changes
// and inbound messages.
func (c *Client) Events() <-chan Event { return c.events }

// Status returns the current lifecycle state and, in the error state,
// the reason.
func (c *Client) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.lastErr
}

// Connect opens the websocket in the background. Calling while a dial
// is in flight or a connection is up is a no-op. There is no automatic
// reconnect: a dropped connection stays down until something calls
// Connect again.
func (c *Client) Connect(endpoint string) {
	c.mu.Lock()
	if c.status == StatusConnecting || c.status == StatusConnected {
		c.mu.Unlock()
		return
	}
	c.status = StatusConnecting
	c.lastErr = nil
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.emit(Event{Kind: EventStatus, Status: StatusConnecting})
	go c.dial(endpoint, gen)
}

func (c *Client) dial(endpoint string, gen int) {
	dialer := *websocket.DefaultDialer
	if strings.HasPrefix(endpoint, "wss://") {
		// Kiosk backends run with self-signed certificates.
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	conn, resp, err := dialer.Dial(endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if gen != c.gen {
		// Superseded by a disconnect while the dial was in flight.
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.status = StatusError
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Error("connect failed", "endpoint", endpoint, "error", err)
		c.emit(Event{Kind: EventStatus, Status: StatusError, Err: err})
		return
	}
	c.conn = conn
	c.status = StatusConnected
	c.mu.Unlock()

	c.logger.Info("connected", "endpoint", endpoint)
	c.emit(Event{Kind: EventStatus, Status: StatusConnected})
	go c.readLoop(conn, gen)
}

// readLoop drains inbound frames until the connection drops. A frame
// that fails to decode is logged and discarded; it never terminates
// the loop or the connection.
func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.finish(gen, err)
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.logger.Warn("frame discarded", "error", err)
			continue
		}
		if msg == nil {
			// Unrecognized tag.
			continue
		}

		c.mu.Lock()
		stale := gen != c.gen
		c.mu.Unlock()
		if stale {
			// The handle was cleared while this frame was in flight.
			return
		}
		c.emit(Event{Kind: EventMessage, Message: msg})
	}
}

// finish records the end of a connection's read loop. Close without a
// prior error is a normal teardown; anything else lands in the error
// state with the reason retained for display.
func (c *Client) finish(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.gen++
	if isExpectedClose(err) {
		c.status = StatusDisconnected
		c.lastErr = nil
		c.mu.Unlock()
		c.logger.Info("connection closed by backend")
		c.emit(Event{Kind: EventStatus, Status: StatusDisconnected})
		return
	}
	c.status = StatusError
	c.lastErr = err
	c.mu.Unlock()
	c.logger.Error("connection dropped", "error", err)
	c.emit(Event{Kind: EventStatus, Status: StatusError, Err: err})
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// Disconnect closes the handle, if any, and clears the local
// reference immediately rather than waiting for the close to be
// observed. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	already := c.status == StatusDisconnected
	c.conn = nil
	c.status = StatusDisconnected
	c.lastErr = nil
	c.gen++
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if !already {
		c.emit(Event{Kind: EventStatus, Status: StatusDisconnected})
	}
}

// Send writes one outbound message. While not connected the message
// is dropped without error: config is latest-value state and gets
// resent on the next user interaction anyway.
func (c *Client) Send(msg any) {
	c.mu.Lock()
	conn := c.conn
	connected := c.status == StatusConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal outbound message", "error", err)
		return
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.logger.Warn("send failed", "error", err)
	}
}

func (c *Client) emit(event Event) {
	c.events <- event
}
