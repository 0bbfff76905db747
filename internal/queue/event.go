// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Auth event types published to the auth.events queue.
const (
	EventUserRegistered    = "user.registered"
	EventUserLogin         = "user.login"
	EventSessionTerminated = "session.terminated"
)

// AuthEvent is published whenever an account is created, a login
// succeeds or sessions are terminated.  It carries enough for
// downstream consumers to audit or alert without querying the
// primary database.  Email and IP may be empty depending on the
// event type.
type AuthEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email,omitempty"`
	IP         string `json:"ip,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewAuthEvent stamps a fresh event with a unique id and the current
// UTC time.
func NewAuthEvent(typ string, userID uint64, email, ip string) AuthEvent {
	return AuthEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		Email:      email,
		IP:         ip,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
