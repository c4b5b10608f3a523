package routedb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/business/types/override"
)

type domainDB struct {
	ID           uuid.UUID `db:"domain_id"`
	TenancyID    uuid.UUID `db:"tenancy_id"`
	Domain       string    `db:"domain"`
	Priority     int       `db:"priority"`
	Presence     *bool     `db:"enable_presence"`
	Photos       *bool     `db:"enable_photos"`
	OutOfOffice  *bool     `db:"enable_out_of_office"`
	LocalGroups  *bool     `db:"enable_local_groups"`
	GlobalGroups *bool     `db:"enable_global_groups"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toDBDomain(bus routebus.Domain) domainDB {
	return domainDB{
		ID:           bus.ID,
		TenancyID:    bus.TenancyID,
		Domain:       bus.Domain.String(),
		Priority:     bus.Priority,
		Presence:     bus.Overrides.Presence.BoolPtr(),
		Photos:       bus.Overrides.Photos.BoolPtr(),
		OutOfOffice:  bus.Overrides.OutOfOffice.BoolPtr(),
		LocalGroups:  bus.Overrides.LocalGroups.BoolPtr(),
		GlobalGroups: bus.Overrides.GlobalGroups.BoolPtr(),
		CreatedAt:    bus.CreatedAt.UTC(),
		UpdatedAt:    bus.UpdatedAt.UTC(),
	}
}

func toBusDomain(db domainDB) (routebus.Domain, error) {
	dom, err := hostdomain.Parse(db.Domain)
	if err != nil {
		return routebus.Domain{}, fmt.Errorf("parse domain: %w", err)
	}

	bus := routebus.Domain{
		ID:        db.ID,
		TenancyID: db.TenancyID,
		Domain:    dom,
		Priority:  db.Priority,
		Overrides: routebus.Overrides{
			Presence:     override.FromBoolPtr(db.Presence),
			Photos:       override.FromBoolPtr(db.Photos),
			OutOfOffice:  override.FromBoolPtr(db.OutOfOffice),
			LocalGroups:  override.FromBoolPtr(db.LocalGroups),
			GlobalGroups: override.FromBoolPtr(db.GlobalGroups),
		},
		CreatedAt: db.CreatedAt.In(time.Local),
		UpdatedAt: db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusDomains(dbs []domainDB) ([]routebus.Domain, error) {
	bus := make([]routebus.Domain, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusDomain(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
