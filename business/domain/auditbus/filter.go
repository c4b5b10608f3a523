package auditbus

import (
	"time"

	"github.com/google/uuid"
)

type QueryFilter struct {
	ActorID        *uuid.UUID
	Action         *string
	Entity         *string
	EntityID       *string
	StartCreatedAt *time.Time
	EndCreatedAt   *time.Time
}
