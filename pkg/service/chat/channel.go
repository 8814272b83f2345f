package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/utils/logging"
)

const (
	// DefaultReconnectLimit is how many consecutive reconnection attempts
	// are made after a non-authentication closure
	DefaultReconnectLimit = 5
	// DefaultReconnectDelay is the fixed delay before each reconnection
	// attempt
	DefaultReconnectDelay = 5 * time.Second
)

var (
	// ErrNotConnected is returned by Send while the socket is not open.
	// Messages are rejected, never queued.
	ErrNotConnected = errors.New("chat connection is not open")
	// ErrAuthClosed means the backend closed the socket with an
	// authentication failure code; the session must be re-established
	ErrAuthClosed = errors.New("chat connection closed: authentication failed")
	// ErrReconnectExhausted means the reconnection ceiling was reached
	ErrReconnectExhausted = errors.New("chat reconnection attempts exhausted")
)

// inboundFrame is what the backend sends: either a chat record or an error
// notice rendered as an assistant message
type inboundFrame struct {
	Role    types.Role `json:"role"`
	Content string     `json:"content"`
	Error   string     `json:"error"`
}

type outboundFrame struct {
	Message string `json:"message"`
}

// Channel is one persistent duplex chat connection. The conversation
// transcript is append-only and lives only as long as the channel.
type Channel struct {
	wsURL          string
	dialer         *websocket.Dialer
	reconnectLimit int
	reconnectDelay time.Duration

	mu         sync.Mutex
	conn       *websocket.Conn
	transcript []model.ChatMessage
	err        error

	events chan model.ChatMessage
	done   chan struct{}
	closed chan struct{}
}

// Option is a functional option for channel configuration
type Option func(*Channel)

// WithReconnectDelay sets the delay before each reconnection attempt
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Channel) {
		c.reconnectDelay = d
	}
}

// WithReconnectLimit sets the reconnection attempt ceiling
func WithReconnectLimit(n int) Option {
	return func(c *Channel) {
		c.reconnectLimit = n
	}
}

// New creates a chat channel for the given session. wsBaseURL is the
// WebSocket endpoint base, e.g. ws://host:8003.
func New(wsBaseURL string, session *model.Session, opts ...Option) (*Channel, error) {
	if !session.IsValid() {
		return nil, goerr.New("a complete session is required for chat")
	}

	u := wsBaseURL + "/ws/chat/" + session.UserID.String() +
		"?token=" + url.QueryEscape(session.AccessToken)

	c := &Channel{
		wsURL:          u,
		dialer:         websocket.DefaultDialer,
		reconnectLimit: DefaultReconnectLimit,
		reconnectDelay: DefaultReconnectDelay,
		events:         make(chan model.ChatMessage, 32),
		done:           make(chan struct{}),
		closed:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Start dials the backend and runs the read loop until the channel is
// closed or a terminal condition is reached. The first dial failure is
// reported synchronously; later closures go through the reconnect policy.
func (c *Channel) Start(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return goerr.Wrap(err, "failed to open chat connection")
	}

	go c.run(ctx)
	return nil
}

// Events delivers assistant messages and connection notices in arrival
// order
func (c *Channel) Events() <-chan model.ChatMessage {
	return c.events
}

// Done is closed when the channel has terminally stopped
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Err returns the terminal error, if any, after Done is closed
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Transcript returns a copy of the conversation so far
func (c *Channel) Transcript() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ChatMessage, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Send submits a user message. It fails with ErrNotConnected while the
// socket is not open; messages are never queued for later delivery.
func (c *Channel) Send(ctx context.Context, text string) error {
	if text == "" {
		return goerr.New("message must not be empty")
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(outboundFrame{Message: text})
	if err != nil {
		return goerr.Wrap(err, "failed to encode message")
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return goerr.Wrap(err, "failed to send message")
	}

	c.append(model.ChatMessage{Role: types.RoleUser, Content: text})
	return nil
}

// Close shuts the channel down
func (c *Channel) Close() {
	select {
	case <-c.closed:
		return
	default:
	}
	close(c.closed)

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *Channel) dial(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// run reads frames until closure, then applies the reconnect policy:
// authentication close codes are terminal, anything else is retried up to
// the ceiling with a fixed delay, counting consecutive failures since the
// last successful open.
func (c *Channel) run(ctx context.Context) {
	logger := logging.From(ctx)
	attempts := 0

	for {
		closeErr := c.readLoop(ctx)

		select {
		case <-c.closed:
			c.finish(nil)
			return
		case <-ctx.Done():
			c.finish(ctx.Err())
			return
		default:
		}

		var ce *websocket.CloseError
		if errors.As(closeErr, &ce) && types.IsAuthCloseCode(ce.Code) {
			c.deliver(model.ChatMessage{
				Role:    types.RoleAssistant,
				Content: "Authentication error: " + ce.Text + ". Please log in again.",
			})
			c.finish(ErrAuthClosed)
			return
		}

		if attempts >= c.reconnectLimit {
			c.deliver(model.ChatMessage{
				Role:    types.RoleAssistant,
				Content: "Failed to reconnect after multiple attempts. Please refresh the page.",
			})
			c.finish(ErrReconnectExhausted)
			return
		}
		attempts++

		logger.Warn("chat connection closed, reconnecting",
			"attempt", attempts,
			"limit", c.reconnectLimit,
			"delay", c.reconnectDelay,
		)

		select {
		case <-c.closed:
			c.finish(nil)
			return
		case <-ctx.Done():
			c.finish(ctx.Err())
			return
		case <-time.After(c.reconnectDelay):
		}

		if c.isOpen() {
			// A connection appeared in the meantime, nothing to do
			attempts = 0
			continue
		}

		if err := c.dial(ctx); err != nil {
			logger.Warn("chat reconnection failed", "attempt", attempts, "error", err.Error())
			continue
		}
		attempts = 0
	}
}

// readLoop pumps inbound frames until the connection drops, returning the
// close error
func (c *Channel) readLoop(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			return err
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logging.From(ctx).Warn("discarding malformed chat frame", "error", err.Error())
			continue
		}

		msg := model.ChatMessage{Role: frame.Role, Content: frame.Content}
		if frame.Error != "" {
			msg = model.ChatMessage{Role: types.RoleAssistant, Content: frame.Error}
		}

		c.append(msg)
		c.deliver(msg)
	}
}

func (c *Channel) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Channel) append(msg model.ChatMessage) {
	c.mu.Lock()
	c.transcript = append(c.transcript, msg)
	c.mu.Unlock()
}

func (c *Channel) deliver(msg model.ChatMessage) {
	select {
	case c.events <- msg:
	default:
		// Receiver is not draining; dropping beats blocking the pump
	}
}

func (c *Channel) finish(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	select {
	case <-c.done:
	default:
		close(c.done)
	}
}
