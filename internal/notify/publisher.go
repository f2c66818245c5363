// Package notify delivers owner-scoped change events to connected devices.
package notify

import (
	"context"
	"time"
)

// Publisher emits an event for one owner. Implementations must be safe for
// concurrent use; the sync engine calls Publish after each commit.
type Publisher interface {
	Publish(ctx context.Context, ownerID, event string, payload any) error
}

// Event is the envelope delivered to subscribers.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"event"`
	OwnerID   string    `json:"ownerId"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emittedAt"`
}
