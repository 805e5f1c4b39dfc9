// Package ssecommon provides common types and utilities for the SSE
// transport.
package ssecommon

import (
	"strings"
	"time"
)

const (
	// HTTPSSEEndpoint is the endpoint where clients open the event stream.
	HTTPSSEEndpoint = "/sse"

	// HTTPMessagesEndpoint is the endpoint where clients POST JSON-RPC
	// messages for an established session.
	HTTPMessagesEndpoint = "/messages"
)

// SSEMessage represents a Server-Sent Event message.
type SSEMessage struct {
	// EventType is the type of the event.
	EventType string

	// Data is the event payload.
	Data string

	// TargetClientID routes the message to a specific client. Empty means
	// the message has no routing constraint.
	TargetClientID string

	// CreatedAt is the time the message was created.
	CreatedAt time.Time
}

// NewSSEMessage creates a new SSE message.
func NewSSEMessage(eventType, data string) *SSEMessage {
	return &SSEMessage{
		EventType: eventType,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

// WithTargetClientID sets the target client ID and returns the message.
func (m *SSEMessage) WithTargetClientID(clientID string) *SSEMessage {
	m.TargetClientID = clientID
	return m
}

// ToSSEString converts the message to wire format: an "event:" line followed
// by one "data:" line per payload line and a terminating blank line.
func (m *SSEMessage) ToSSEString() string {
	var sb strings.Builder
	sb.WriteString("event: " + m.EventType + "\n")
	for _, line := range strings.Split(m.Data, "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// PendingSSEMessage is a message queued for delivery to a client that has
// not connected yet.
type PendingSSEMessage struct {
	// Message is the queued message.
	Message *SSEMessage

	// CreatedAt is the time the message was queued.
	CreatedAt time.Time
}

// NewPendingSSEMessage creates a new pending SSE message.
func NewPendingSSEMessage(message *SSEMessage) *PendingSSEMessage {
	return &PendingSSEMessage{
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// SSEClient holds the delivery state of a connected SSE client.
type SSEClient struct {
	// MessageCh is the channel the transport's write side drains.
	MessageCh chan string

	// CreatedAt is the time the client connected.
	CreatedAt time.Time
}
