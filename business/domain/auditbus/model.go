package auditbus

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents one recorded administrative action. Entries are
// append-only and never updated.
type Entry struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	ActorEmail string
	Action     string
	Entity     string
	EntityID   string
	Detail     map[string]any
	CreatedAt  time.Time
}

// NewEntry contains information needed to record an action.
type NewEntry struct {
	ActorID    uuid.UUID
	ActorEmail string
	Action     string
	Entity     string
	EntityID   string
	Detail     map[string]any
}
