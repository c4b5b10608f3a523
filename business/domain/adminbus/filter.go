package adminbus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/types/name"
)

type QueryFilter struct {
	ID             *uuid.UUID
	Name           *name.Name
	Email          *mail.Address
	Enabled        *bool
	StartCreatedAt *time.Time
	EndCreatedAt   *time.Time
}
