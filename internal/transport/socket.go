package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrClosed = errors.New("socket closed")
)

// Message wraps raw frame bytes with the local receive timestamp.
type Message struct {
	Data       []byte
	ReceivedAt time.Time
}

// Transport is one live duplex connection. The connection core consumes the
// Messages and Errors channels and calls Send/Close from its own goroutines.
type Transport interface {
	// Send writes one frame. Safe for concurrent use.
	Send(data []byte) error

	// Close tears the connection down. Idempotent.
	Close() error

	// Messages returns the inbound frame channel. It is closed when the
	// read loop exits without a reportable error.
	Messages() <-chan Message

	// Errors surfaces the read error that killed the connection.
	Errors() <-chan error
}

// Dialer opens transports. The connection core holds a Dialer rather than a
// socket so tests can substitute an in-memory implementation.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Transport, error)
}

// Config tunes socket behaviour.
type Config struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	BufferSize       int  // inbound message channel depth
	Compression      bool // gzip frame payloads
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       256,
	}
}

// WSDialer dials real WebSocket connections.
type WSDialer struct {
	cfg    Config
	logger *slog.Logger
}

// NewWSDialer creates a Dialer for the given socket config.
func NewWSDialer(cfg Config, logger *slog.Logger) *WSDialer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultConfig().HandshakeTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	return &WSDialer{cfg: cfg, logger: logger}
}

// Dial opens a WebSocket connection and starts its read loop.
func (d *WSDialer) Dial(ctx context.Context, url string, header http.Header) (Transport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	s := &socket{
		cfg:      d.cfg,
		logger:   d.logger,
		conn:     conn,
		messages: make(chan Message, d.cfg.BufferSize),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}

	go s.readLoop()

	d.logger.Debug("websocket connected", "url", url)
	return s, nil
}

// socket implements Transport over a gorilla connection.
type socket struct {
	cfg    Config
	logger *slog.Logger
	conn   *websocket.Conn

	messages chan Message
	errors   chan error
	done     chan struct{}

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

func (s *socket) Send(data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	if s.cfg.Compression {
		var err error
		data, err = compress(data)
		if err != nil {
			return err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)

	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return s.conn.Close()
}

func (s *socket) Messages() <-chan Message {
	return s.messages
}

func (s *socket) Errors() <-chan error {
	return s.errors
}

func (s *socket) readLoop() {
	defer close(s.messages)

	for {
		_, data, err := s.conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			// Errors after Close() are expected teardown noise.
			select {
			case <-s.done:
			default:
				select {
				case s.errors <- err:
				default:
				}
			}
			return
		}

		if isGzip(data) {
			data, err = decompress(data)
			if err != nil {
				s.logger.Warn("dropping undecodable compressed frame", "error", err)
				continue
			}
		}

		select {
		case s.messages <- Message{Data: data, ReceivedAt: receivedAt}:
		case <-s.done:
			return
		default:
			s.logger.Warn("message buffer full, dropping frame")
		}
	}
}
