package event

import (
	"time"

	"github.com/google/uuid"
)

// Entity names the collection a change happened in.
type Entity string

const (
	EntityBooking  Entity = "booking"
	EntityResource Entity = "resource"
)

// Action names the kind of mutation.
type Action string

const (
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
)

// Event is published after a store mutation has been committed.
// Subscribers treat it as a hint to refresh their snapshot.
type Event struct {
	ID         string    `json:"id"`
	Entity     Entity    `json:"entity"`
	Action     Action    `json:"action"`
	EntityID   int64     `json:"entity_id"`
	Found      bool      `json:"found"` // false for a delete that matched nothing
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an Event with a fresh id.
func New(entity Entity, action Action, entityID int64, found bool, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		Found:      found,
		OccurredAt: at,
	}
}

// Type is the dotted event type, e.g. "booking.created".
func (e Event) Type() string {
	return string(e.Entity) + "." + string(e.Action)
}
