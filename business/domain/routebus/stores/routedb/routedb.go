// Package routedb contains SMTP domain related CRUD functionality.
package routedb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for SMTP domain database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (routebus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new SMTP domain into the database.
func (s *Store) Create(ctx context.Context, d routebus.Domain) error {
	const q = `
	INSERT INTO "public"."smtp_domain"
		(domain_id, tenancy_id, domain, priority,
		 enable_presence, enable_photos, enable_out_of_office,
		 enable_local_groups, enable_global_groups, created_at, updated_at)
	VALUES
		(:domain_id, :tenancy_id, :domain, :priority,
		 :enable_presence, :enable_photos, :enable_out_of_office,
		 :enable_local_groups, :enable_global_groups, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBDomain(d)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			if dupErr.Column == "domain" || dupErr.Column == "uq_smtp_domain_domain" {
				return fmt.Errorf("namedexeccontext: %w", routebus.ErrUniqueDomain)
			}
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces an SMTP domain document in the database.
func (s *Store) Update(ctx context.Context, d routebus.Domain) error {
	const q = `
	UPDATE
		"public"."smtp_domain"
	SET
		domain = :domain,
		priority = :priority,
		enable_presence = :enable_presence,
		enable_photos = :enable_photos,
		enable_out_of_office = :enable_out_of_office,
		enable_local_groups = :enable_local_groups,
		enable_global_groups = :enable_global_groups,
		updated_at = :updated_at
	WHERE
		domain_id = :domain_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBDomain(d)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			if dupErr.Column == "domain" || dupErr.Column == "uq_smtp_domain_domain" {
				return fmt.Errorf("namedexeccontext: %w", routebus.ErrUniqueDomain)
			}
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes an SMTP domain from the database.
func (s *Store) Delete(ctx context.Context, d routebus.Domain) error {
	data := struct {
		ID string `db:"domain_id"`
	}{
		ID: d.ID.String(),
	}

	const q = `
	DELETE FROM
		"public"."smtp_domain"
	WHERE
		domain_id = :domain_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing SMTP domains from the database.
func (s *Store) Query(ctx context.Context, orderBy order.By, page page.Page) ([]routebus.Domain, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		domain_id, tenancy_id, domain, priority,
		enable_presence, enable_photos, enable_out_of_office,
		enable_local_groups, enable_global_groups, created_at, updated_at
	FROM
		"public"."smtp_domain"`

	buf := bytes.NewBufferString(q)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbDs []domainDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbDs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusDomains(dbDs)
}

// Count returns the total number of SMTP domains in the DB.
func (s *Store) Count(ctx context.Context) (int, error) {
	const q = `
	SELECT
		count(1) AS count
	FROM
		"public"."smtp_domain"`

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, map[string]any{}, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// QueryByID gets the specified SMTP domain from the database.
func (s *Store) QueryByID(ctx context.Context, domainID uuid.UUID) (routebus.Domain, error) {
	data := struct {
		ID string `db:"domain_id"`
	}{
		ID: domainID.String(),
	}

	const q = `
	SELECT
		domain_id, tenancy_id, domain, priority,
		enable_presence, enable_photos, enable_out_of_office,
		enable_local_groups, enable_global_groups, created_at, updated_at
	FROM
		"public"."smtp_domain"
	WHERE
		domain_id = :domain_id`

	var dbD domainDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbD); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return routebus.Domain{}, fmt.Errorf("db: %w", routebus.ErrNotFound)
		}
		return routebus.Domain{}, fmt.Errorf("db: %w", err)
	}

	return toBusDomain(dbD)
}

// queryByDomainSQL selects the routing record for a mail domain. The
// highest priority wins and creation time breaks ties so the result is
// deterministic even if the uniqueness guarantee on domain ever relaxes.
const queryByDomainSQL = `
	SELECT
		domain_id, tenancy_id, domain, priority,
		enable_presence, enable_photos, enable_out_of_office,
		enable_local_groups, enable_global_groups, created_at, updated_at
	FROM
		"public"."smtp_domain"
	WHERE
		domain = :domain
	ORDER BY
		priority DESC, created_at ASC
	LIMIT 1`

// QueryByDomain gets the routing record for the specified mail domain.
func (s *Store) QueryByDomain(ctx context.Context, domain hostdomain.HostDomain) (routebus.Domain, error) {
	data := struct {
		Domain string `db:"domain"`
	}{
		Domain: domain.String(),
	}

	var dbD domainDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, queryByDomainSQL, data, &dbD); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return routebus.Domain{}, routebus.ErrNotFound
		}
		return routebus.Domain{}, fmt.Errorf("db: %w", err)
	}

	return toBusDomain(dbD)
}

func orderByClause(orderBy order.By) (string, error) {
	byFields := map[string]string{
		"domain":     "domain",
		"priority":   "priority",
		"created_at": "created_at",
	}

	by, exists := byFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
