// Package session provides session types and a manager for the transport
// layer. Sessions are fully isolated from one another: each owns its own
// outbound message channel and is never shared across connections.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/oangelo/homebox-mcp/pkg/transport/ssecommon"
)

// Session-level delivery errors.
var (
	// ErrSessionDisconnected is returned when sending to a closed session.
	ErrSessionDisconnected = errors.New("session disconnected")

	// ErrMessageChannelFull is returned when the session's outbound queue
	// is full.
	ErrMessageChannelFull = errors.New("message channel full")
)

// Session defines the interface for transport sessions.
type Session interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Touch()
}

// SSESession is a session delivering messages over an SSE stream.
type SSESession struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	updatedAt time.Time

	client       *ssecommon.SSEClient
	disconnected bool
	closeOnce    sync.Once
}

// channelCapacity bounds the per-session outbound queue so a stalled reader
// cannot hold invocation results forever.
const channelCapacity = 100

// NewSSESession creates an SSE session with a fresh buffered message channel.
func NewSSESession(id string) *SSESession {
	return NewSSESessionWithClient(id, &ssecommon.SSEClient{
		MessageCh: make(chan string, channelCapacity),
		CreatedAt: time.Now(),
	})
}

// NewSSESessionWithClient creates an SSE session wrapping an existing client.
func NewSSESessionWithClient(id string, client *ssecommon.SSEClient) *SSESession {
	now := time.Now()
	return &SSESession{
		id:        id,
		createdAt: now,
		updatedAt: now,
		client:    client,
	}
}

// ID returns the session ID.
func (s *SSESession) ID() string { return s.id }

// CreatedAt returns the session creation time.
func (s *SSESession) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last activity time.
func (s *SSESession) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Touch updates the last activity time.
func (s *SSESession) Touch() {
	s.mu.Lock()
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// MessageCh returns the session's outbound message channel.
func (s *SSESession) MessageCh() <-chan string {
	return s.client.MessageCh
}

// SendMessage queues a message for delivery on the session's channel.
// Messages for disconnected sessions are rejected; their invocation results
// are simply dropped.
func (s *SSESession) SendMessage(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disconnected {
		return ErrSessionDisconnected
	}

	select {
	case s.client.MessageCh <- msg:
		s.updatedAt = time.Now()
		return nil
	default:
		return ErrMessageChannelFull
	}
}

// Disconnect marks the session closed and closes its channel. Safe to call
// more than once.
func (s *SSESession) Disconnect() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.disconnected = true
		s.mu.Unlock()
		close(s.client.MessageCh)
	})
}
