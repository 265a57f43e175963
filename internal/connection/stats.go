package connection

import (
	"time"

	"go.uber.org/atomic"
)

// Stats is a read-only snapshot of one Core's counters. ConnectedAt is the
// zero time and LatencyMs is negative until the first connect / heartbeat
// ack respectively.
type Stats struct {
	State             State
	MessagesReceived  int64
	MessagesSent      int64
	ReconnectAttempts int
	LastError         string
	ConnectedAt       time.Time
	LatencyMs         int64
}

// stats holds the live counters. They are written from the Core's event
// goroutines and snapshotted from arbitrary caller goroutines, hence the
// atomics.
type stats struct {
	messagesReceived  atomic.Int64
	messagesSent      atomic.Int64
	reconnectAttempts atomic.Int64
	lastError         atomic.String
	connectedAtMs     atomic.Int64
	latencyMs         atomic.Int64
}

func newStats() *stats {
	s := &stats{}
	s.latencyMs.Store(-1)
	return s
}

// onConnected records a successful transition to Connected: stamps the
// connect time, clears the last error, and zeroes the attempt counter.
func (s *stats) onConnected(now time.Time) {
	s.connectedAtMs.Store(now.UnixMilli())
	s.reconnectAttempts.Store(0)
	s.lastError.Store("")
}

func (s *stats) setLastError(msg string) {
	s.lastError.Store(msg)
}

func (s *stats) snapshot() Stats {
	var connectedAt time.Time
	if ms := s.connectedAtMs.Load(); ms > 0 {
		connectedAt = time.UnixMilli(ms)
	}
	return Stats{
		MessagesReceived:  s.messagesReceived.Load(),
		MessagesSent:      s.messagesSent.Load(),
		ReconnectAttempts: int(s.reconnectAttempts.Load()),
		LastError:         s.lastError.Load(),
		ConnectedAt:       connectedAt,
		LatencyMs:         s.latencyMs.Load(),
	}
}
