// Package tenancydb contains tenancy related CRUD functionality.
package tenancydb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/secrets"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for tenancy database access.
type Store struct {
	log    *logger.Logger
	db     sqlx.ExtContext
	keeper *secrets.Keeper
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB, keeper *secrets.Keeper) *Store {
	return &Store{
		log:    log,
		db:     db,
		keeper: keeper,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenancybus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log:    s.log,
		db:     ec,
		keeper: s.keeper,
	}

	return &store, nil
}

// Create inserts a new tenancy into the database.
func (s *Store) Create(ctx context.Context, t tenancybus.Tenancy) error {
	const q = `
	INSERT INTO "public"."office_tenancy"
		(tenancy_id, name, tenant_id, client_id, client_secret_enc, enabled,
		 enable_presence, enable_photos, enable_out_of_office, enable_local_groups,
		 enable_global_groups, enable_group_send_check, created_at, updated_at)
	VALUES
		(:tenancy_id, :name, :tenant_id, :client_id, :client_secret_enc, :enabled,
		 :enable_presence, :enable_photos, :enable_out_of_office, :enable_local_groups,
		 :enable_global_groups, :enable_group_send_check, :created_at, :updated_at)`

	dbT, err := toDBTenancy(t, s.keeper)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbT); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			switch dupErr.Column {
			case "tenant_id", "uq_office_tenancy_tenant_id":
				return fmt.Errorf("namedexeccontext: %w", tenancybus.ErrUniqueTenantID)
			case "name", "uq_office_tenancy_name":
				return fmt.Errorf("namedexeccontext: %w", tenancybus.ErrUniqueName)
			}
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a tenancy document in the database. tenant_id and
// client_id are not part of the statement: they are immutable.
func (s *Store) Update(ctx context.Context, t tenancybus.Tenancy) error {
	const q = `
	UPDATE
		"public"."office_tenancy"
	SET
		name = :name,
		client_secret_enc = :client_secret_enc,
		enabled = :enabled,
		enable_presence = :enable_presence,
		enable_photos = :enable_photos,
		enable_out_of_office = :enable_out_of_office,
		enable_local_groups = :enable_local_groups,
		enable_global_groups = :enable_global_groups,
		enable_group_send_check = :enable_group_send_check,
		updated_at = :updated_at
	WHERE
		tenancy_id = :tenancy_id`

	dbT, err := toDBTenancy(t, s.keeper)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbT); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			if dupErr.Column == "name" || dupErr.Column == "uq_office_tenancy_name" {
				return fmt.Errorf("namedexeccontext: %w", tenancybus.ErrUniqueName)
			}
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a tenancy from the database. The smtp_domain rows cascade.
func (s *Store) Delete(ctx context.Context, t tenancybus.Tenancy) error {
	data := struct {
		ID string `db:"tenancy_id"`
	}{
		ID: t.ID.String(),
	}

	const q = `
	DELETE FROM
		"public"."office_tenancy"
	WHERE
		tenancy_id = :tenancy_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing tenancies from the database.
func (s *Store) Query(ctx context.Context, orderBy order.By, page page.Page) ([]tenancybus.Tenancy, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		tenancy_id, name, tenant_id, client_id, client_secret_enc, enabled,
		enable_presence, enable_photos, enable_out_of_office, enable_local_groups,
		enable_global_groups, enable_group_send_check, created_at, updated_at
	FROM
		"public"."office_tenancy"`

	buf := bytes.NewBufferString(q)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbTs []tenancyDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbTs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusTenancies(dbTs, s.keeper)
}

// Count returns the total number of tenancies in the DB.
func (s *Store) Count(ctx context.Context) (int, error) {
	const q = `
	SELECT
		count(1) AS count
	FROM
		"public"."office_tenancy"`

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, map[string]any{}, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// QueryByID gets the specified tenancy from the database.
func (s *Store) QueryByID(ctx context.Context, tenancyID uuid.UUID) (tenancybus.Tenancy, error) {
	data := struct {
		ID string `db:"tenancy_id"`
	}{
		ID: tenancyID.String(),
	}

	const q = `
	SELECT
		tenancy_id, name, tenant_id, client_id, client_secret_enc, enabled,
		enable_presence, enable_photos, enable_out_of_office, enable_local_groups,
		enable_global_groups, enable_group_send_check, created_at, updated_at
	FROM
		"public"."office_tenancy"
	WHERE
		tenancy_id = :tenancy_id`

	var dbT tenancyDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbT); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenancybus.Tenancy{}, fmt.Errorf("db: %w", tenancybus.ErrNotFound)
		}
		return tenancybus.Tenancy{}, fmt.Errorf("db: %w", err)
	}

	return toBusTenancy(dbT, s.keeper)
}

func orderByClause(orderBy order.By) (string, error) {
	byFields := map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}

	by, exists := byFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
