package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pulsegrid/go-vitalview/internal/log"
)

// Config holds the tunable parameters for the stream client.
type Config struct {
	// ReconnectDelay is the fixed wait between reconnection attempts.
	// There is no backoff growth and no retry ceiling.
	ReconnectDelay time.Duration

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds outbound control writes.
	WriteTimeout time.Duration

	// ReadLimit is the maximum inbound message size. Snapshots carrying
	// an encoded camera frame can be large.
	ReadLimit int64
}

// DefaultConfig returns the recommended client configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:   2 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		ReadLimit:        4 * 1024 * 1024,
	}
}

// Client maintains the duplex connection to the inference gateway. It
// reconnects forever on loss; consumers see one continuous sequence of
// snapshots and status flips across any number of reconnect cycles.
type Client struct {
	url string
	cfg Config
	id  string

	// Latest-wins delivery: capacity one, stale values displaced. If the
	// consumer cannot keep up, intermediate snapshots are dropped, never
	// queued.
	snapshots chan Snapshot
	status    chan bool

	mu        sync.Mutex
	conn      *websocket.Conn // single authoritative connection
	connected bool
}

// New creates a client for the given gateway URL. The endpoint is fixed
// for the life of the client.
func New(url string, cfg Config) *Client {
	return &Client{
		url:       url,
		cfg:       cfg,
		id:        uuid.NewString(),
		snapshots: make(chan Snapshot, 1),
		status:    make(chan bool, 8),
	}
}

// Snapshots returns the sequence of decoded snapshots, newest winning.
func (c *Client) Snapshots() <-chan Snapshot { return c.snapshots }

// Status returns connection flips: true on open, false on close or error.
func (c *Client) Status() <-chan bool { return c.status }

// Connected reports whether the channel is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Run drives the connect/read/reconnect loop until ctx is cancelled.
// Connection failures are recoverable by definition; Run never surfaces
// them to the caller.
func (c *Client) Run(ctx context.Context) {
	logger := log.With("component", "stream", "session", c.id, "url", c.url)

	for {
		dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
		conn, _, err := dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Debug("dial failed", "error", err)
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		conn.SetReadLimit(c.cfg.ReadLimit)
		c.adopt(conn)
		c.setConnected(true)
		logger.Info("connected")

		c.readLoop(ctx, conn)

		c.setConnected(false)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		logger.Warn("connection lost, retrying", "delay", c.cfg.ReconnectDelay)
		if !c.sleep(ctx) {
			return
		}
	}
}

// Send transmits a control message if the channel is open. It reports
// whether the message was handed to the transport; false means the
// message is lost and the caller must not assume delivery.
func (c *Client) Send(msg ControlMessage) bool {
	c.mu.Lock()
	conn, open := c.conn, c.connected
	c.mu.Unlock()

	if !open || conn == nil {
		return false
	}

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Debug("control send failed", "type", msg.Type, "error", err)
		return false
	}
	return true
}

// Close tears down the current connection. Run (if still active) will
// observe the closed conn and exit on its context instead of redialing.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the read when the caller tears down.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		snap, err := DecodeMessage(data)
		if err != nil {
			// Malformed or foreign messages are dropped without touching
			// connection state or previously rendered state.
			log.Debug("dropped message", "error", err)
			continue
		}
		c.deliver(conn, snap)
	}
}

// adopt installs conn as the single authoritative connection, closing any
// superseded one without draining its in-flight messages.
func (c *Client) adopt(conn *websocket.Conn) {
	c.mu.Lock()
	prev := c.conn
	c.conn = conn
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

// deliver pushes a snapshot latest-wins, but only from the authoritative
// connection; a stale channel racing its close cannot emit duplicates.
func (c *Client) deliver(conn *websocket.Conn, snap Snapshot) {
	c.mu.Lock()
	authoritative := c.conn == conn
	c.mu.Unlock()
	if !authoritative {
		return
	}

	for {
		select {
		case c.snapshots <- snap:
			return
		default:
			// Displace the stale snapshot: frame dropping, not queueing.
			select {
			case <-c.snapshots:
			default:
			}
		}
	}
}

// setConnected records a state transition and emits it. Repeated values
// are not re-emitted, so dial retries do not spam the status sequence.
func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	if c.connected == v {
		c.mu.Unlock()
		return
	}
	c.connected = v
	c.mu.Unlock()

	for {
		select {
		case c.status <- v:
			return
		default:
			select {
			case <-c.status:
			default:
			}
		}
	}
}

func (c *Client) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	}
}
