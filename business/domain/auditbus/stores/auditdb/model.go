package auditdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/auditbus"
)

type entryDB struct {
	ID         uuid.UUID `db:"entry_id"`
	ActorID    uuid.UUID `db:"actor_id"`
	ActorEmail string    `db:"actor_email"`
	Action     string    `db:"action"`
	Entity     string    `db:"entity"`
	EntityID   string    `db:"entity_id"`
	Detail     []byte    `db:"detail"`
	CreatedAt  time.Time `db:"created_at"`
}

func toDBEntry(bus auditbus.Entry) (entryDB, error) {
	detail := []byte("{}")
	if bus.Detail != nil {
		var err error
		detail, err = json.Marshal(bus.Detail)
		if err != nil {
			return entryDB{}, fmt.Errorf("marshal detail: %w", err)
		}
	}

	return entryDB{
		ID:         bus.ID,
		ActorID:    bus.ActorID,
		ActorEmail: bus.ActorEmail,
		Action:     bus.Action,
		Entity:     bus.Entity,
		EntityID:   bus.EntityID,
		Detail:     detail,
		CreatedAt:  bus.CreatedAt.UTC(),
	}, nil
}

func toBusEntry(db entryDB) (auditbus.Entry, error) {
	var detail map[string]any
	if len(db.Detail) > 0 {
		if err := json.Unmarshal(db.Detail, &detail); err != nil {
			return auditbus.Entry{}, fmt.Errorf("unmarshal detail: %w", err)
		}
	}

	bus := auditbus.Entry{
		ID:         db.ID,
		ActorID:    db.ActorID,
		ActorEmail: db.ActorEmail,
		Action:     db.Action,
		Entity:     db.Entity,
		EntityID:   db.EntityID,
		Detail:     detail,
		CreatedAt:  db.CreatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusEntries(dbs []entryDB) ([]auditbus.Entry, error) {
	bus := make([]auditbus.Entry, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusEntry(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
