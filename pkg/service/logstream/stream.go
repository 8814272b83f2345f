package logstream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/utils/logging"
)

// DefaultRetention is how many of the most recent records are kept
const DefaultRetention = 10

// Stream tails the backend log feed for one subject. Incoming structured
// records are appended and only the most recent ones retained.
type Stream struct {
	wsURL     string
	dialer    *websocket.Dialer
	retention int

	mu      sync.Mutex
	conn    *websocket.Conn
	records []model.LogRecord

	events chan model.LogRecord
	done   chan struct{}
	closed chan struct{}
}

// Option is a functional option for stream configuration
type Option func(*Stream)

// WithRetention sets how many recent records are kept
func WithRetention(n int) Option {
	return func(s *Stream) {
		s.retention = n
	}
}

// New creates a log stream for the given subject. wsBaseURL is the
// WebSocket endpoint base, e.g. ws://host:8001.
func New(wsBaseURL string, userID types.UserID, opts ...Option) (*Stream, error) {
	if userID.IsEmpty() {
		return nil, goerr.New("a subject user ID is required for the log stream")
	}

	s := &Stream{
		wsURL:     wsBaseURL + "/ws/logs/" + userID.String(),
		dialer:    websocket.DefaultDialer,
		retention: DefaultRetention,
		events:    make(chan model.LogRecord, 32),
		done:      make(chan struct{}),
		closed:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start opens the connection and pumps records until the stream is closed
// or the connection drops
func (s *Stream) Start(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to open log stream", goerr.V("url", s.wsURL))
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Events delivers records as they arrive
func (s *Stream) Events() <-chan model.LogRecord {
	return s.events
}

// Done is closed when the stream has stopped
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Recent returns the retained records, oldest first
func (s *Stream) Recent() []model.LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LogRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Close shuts the stream down
func (s *Stream) Close() {
	select {
	case <-s.closed:
		return
	default:
	}
	close(s.closed)

	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
			default:
				logging.From(ctx).Warn("log stream closed", "error", err.Error())
			}
			return
		}

		var rec model.LogRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			logging.From(ctx).Warn("discarding malformed log record", "error", err.Error())
			continue
		}

		s.mu.Lock()
		s.records = append(s.records, rec)
		if len(s.records) > s.retention {
			s.records = s.records[len(s.records)-s.retention:]
		}
		s.mu.Unlock()

		select {
		case s.events <- rec:
		default:
		}
	}
}
