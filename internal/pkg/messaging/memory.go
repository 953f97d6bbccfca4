package messaging

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"
)

// Published is a message captured by Memory.
type Published struct {
	Topic   string
	Message OutgoingMessage
	At      time.Time
}

// Memory is an in-process publisher. It never drops messages; Drain hands
// them to the caller.
type Memory struct {
	mu     sync.Mutex
	seq    uint64
	msgs   []Published
	closed bool
}

// NewMemory constructs an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish appends msg to the buffer.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrTopicRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return PublishResult{}, io.ErrClosedPipe
	}

	m.seq++
	now := time.Now()
	m.msgs = append(m.msgs, Published{Topic: destination, Message: msg, At: now})

	return PublishResult{
		MessageID: strconv.FormatUint(m.seq, 10),
		Topic:     destination,
		Timestamp: now,
	}, nil
}

// Drain returns and clears the buffered messages.
func (m *Memory) Drain() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.msgs
	m.msgs = nil
	return out
}

// Close rejects further publishes.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
