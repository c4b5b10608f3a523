package tenancydb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/secrets"
	"github.com/intradir/intradir/business/types/name"
)

type tenancyDB struct {
	ID              uuid.UUID `db:"tenancy_id"`
	Name            string    `db:"name"`
	TenantID        uuid.UUID `db:"tenant_id"`
	ClientID        string    `db:"client_id"`
	ClientSecretEnc []byte    `db:"client_secret_enc"`
	Enabled         bool      `db:"enabled"`
	Presence        bool      `db:"enable_presence"`
	Photos          bool      `db:"enable_photos"`
	OutOfOffice     bool      `db:"enable_out_of_office"`
	LocalGroups     bool      `db:"enable_local_groups"`
	GlobalGroups    bool      `db:"enable_global_groups"`
	GroupSendCheck  bool      `db:"enable_group_send_check"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func toDBTenancy(bus tenancybus.Tenancy, keeper *secrets.Keeper) (tenancyDB, error) {
	enc, err := keeper.Encrypt(bus.ClientSecret)
	if err != nil {
		return tenancyDB{}, fmt.Errorf("encrypting client secret: %w", err)
	}

	return tenancyDB{
		ID:              bus.ID,
		Name:            bus.Name.String(),
		TenantID:        bus.TenantID,
		ClientID:        bus.ClientID,
		ClientSecretEnc: enc,
		Enabled:         bus.Enabled,
		Presence:        bus.Flags.Presence,
		Photos:          bus.Flags.Photos,
		OutOfOffice:     bus.Flags.OutOfOffice,
		LocalGroups:     bus.Flags.LocalGroups,
		GlobalGroups:    bus.Flags.GlobalGroups,
		GroupSendCheck:  bus.Flags.GroupSendCheck,
		CreatedAt:       bus.CreatedAt.UTC(),
		UpdatedAt:       bus.UpdatedAt.UTC(),
	}, nil
}

func toBusTenancy(db tenancyDB, keeper *secrets.Keeper) (tenancybus.Tenancy, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return tenancybus.Tenancy{}, fmt.Errorf("parse name: %w", err)
	}

	secret, err := keeper.Decrypt(db.ClientSecretEnc)
	if err != nil {
		return tenancybus.Tenancy{}, fmt.Errorf("decrypting client secret: %w", err)
	}

	bus := tenancybus.Tenancy{
		ID:           db.ID,
		Name:         nme,
		TenantID:     db.TenantID,
		ClientID:     db.ClientID,
		ClientSecret: secret,
		Enabled:      db.Enabled,
		Flags: tenancybus.Flags{
			Presence:       db.Presence,
			Photos:         db.Photos,
			OutOfOffice:    db.OutOfOffice,
			LocalGroups:    db.LocalGroups,
			GlobalGroups:   db.GlobalGroups,
			GroupSendCheck: db.GroupSendCheck,
		},
		CreatedAt: db.CreatedAt.In(time.Local),
		UpdatedAt: db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusTenancies(dbs []tenancyDB, keeper *secrets.Keeper) ([]tenancybus.Tenancy, error) {
	bus := make([]tenancybus.Tenancy, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusTenancy(db, keeper)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
