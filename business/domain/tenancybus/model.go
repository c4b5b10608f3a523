package tenancybus

import (
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/types/name"
)

// Flags represents the capability ceiling of a tenancy. A domain override
// can narrow these but never widen them.
type Flags struct {
	Presence       bool
	Photos         bool
	OutOfOffice    bool
	LocalGroups    bool
	GlobalGroups   bool
	GroupSendCheck bool
}

// Tenancy represents an Office 365 tenancy the system can route Graph
// calls to. TenantID and ClientID are immutable once created. ClientSecret
// is held decrypted in memory and encrypted at rest.
type Tenancy struct {
	ID           uuid.UUID
	Name         name.Name
	TenantID     uuid.UUID
	ClientID     string
	ClientSecret string
	Enabled      bool
	Flags        Flags
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTenancy contains information needed to create a new tenancy.
type NewTenancy struct {
	Name         name.Name
	TenantID     uuid.UUID
	ClientID     string
	ClientSecret string
	Flags        Flags
}

// UpdateTenancy contains information needed to update a tenancy. TenantID
// and ClientID are absent on purpose: they cannot change after creation.
// ClientSecret is only replaced when a non-nil value is supplied.
type UpdateTenancy struct {
	Name         *name.Name
	ClientSecret *string
	Enabled      *bool
	Flags        *Flags
}
