package admindb

import (
	"database/sql"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/adminbus"
	"github.com/intradir/intradir/business/types/name"
	"github.com/intradir/intradir/business/types/role"
)

type userDB struct {
	ID           uuid.UUID    `db:"user_id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	Role         string       `db:"role"`
	PasswordHash []byte       `db:"password_hash"`
	Enabled      bool         `db:"enabled"`
	LastLoginAt  sql.NullTime `db:"last_login_at"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

func toDBUser(bus adminbus.User) userDB {
	db := userDB{
		ID:           bus.ID,
		Name:         bus.Name.String(),
		Email:        bus.Email.Address,
		Role:         bus.Role.String(),
		PasswordHash: bus.PasswordHash,
		Enabled:      bus.Enabled,
		CreatedAt:    bus.CreatedAt.UTC(),
		UpdatedAt:    bus.UpdatedAt.UTC(),
	}

	if bus.LastLoginAt != nil {
		db.LastLoginAt = sql.NullTime{Time: bus.LastLoginAt.UTC(), Valid: true}
	}

	return db
}

func toBusUser(db userDB) (adminbus.User, error) {
	addr := mail.Address{
		Address: db.Email,
	}

	usrRole, err := role.Parse(db.Role)
	if err != nil {
		return adminbus.User{}, fmt.Errorf("parse: %w", err)
	}

	nme, err := name.Parse(db.Name)
	if err != nil {
		return adminbus.User{}, fmt.Errorf("parse name: %w", err)
	}

	bus := adminbus.User{
		ID:           db.ID,
		Name:         nme,
		Email:        addr,
		Role:         usrRole,
		PasswordHash: db.PasswordHash,
		Enabled:      db.Enabled,
		CreatedAt:    db.CreatedAt.In(time.Local),
		UpdatedAt:    db.UpdatedAt.In(time.Local),
	}

	if db.LastLoginAt.Valid {
		t := db.LastLoginAt.Time.In(time.Local)
		bus.LastLoginAt = &t
	}

	return bus, nil
}

func toBusUsers(dbs []userDB) ([]adminbus.User, error) {
	bus := make([]adminbus.User, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusUser(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
