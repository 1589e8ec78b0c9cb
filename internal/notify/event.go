// Package notify delivers match and like events to users outside the request path.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names the event type.
type Kind string

const (
	KindMatch Kind = "match"
	KindLiked Kind = "liked"
)

// Event is one notification addressed to Recipient about Peer.
// ID lets consumers drop duplicates.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	Recipient uint64    `json:"recipient"`
	Peer      uint64    `json:"peer"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent stamps a fresh id on the event.
func NewEvent(kind Kind, recipient, peer uint64, now time.Time) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Recipient: recipient,
		Peer:      peer,
		CreatedAt: now.UTC(),
	}
}

// Notifier delivers an event. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}
