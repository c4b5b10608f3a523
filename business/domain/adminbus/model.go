package adminbus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/types/name"
	"github.com/intradir/intradir/business/types/password"
	"github.com/intradir/intradir/business/types/role"
)

// User represents an administrator account for the management surface.
type User struct {
	ID           uuid.UUID
	Name         name.Name
	Email        mail.Address
	Role         role.Role
	PasswordHash []byte
	Enabled      bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser contains information needed to create a new user.
type NewUser struct {
	Name     name.Name
	Email    mail.Address
	Role     role.Role
	Password password.Password
}

// UpdateUser contains information needed to update a user.
type UpdateUser struct {
	Name     *name.Name
	Email    *mail.Address
	Role     *role.Role
	Password *password.Password
	Enabled  *bool
}
