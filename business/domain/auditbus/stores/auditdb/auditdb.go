// Package auditdb contains audit log related database functionality.
package auditdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/auditbus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for audit log database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (auditbus.Storer, error) {
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

// Create appends a new entry to the log. There is no update or delete.
func (s *Store) Create(ctx context.Context, e auditbus.Entry) error {
	const q = `
	INSERT INTO "public"."audit_log"
		(entry_id, actor_id, actor_email, action, entity, entity_id, detail, created_at)
	VALUES
		(:entry_id, :actor_id, :actor_email, :action, :entity, :entity_id, :detail, :created_at)`

	dbE, err := toDBEntry(e)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbE); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing entries from the database.
func (s *Store) Query(ctx context.Context, filter auditbus.QueryFilter, orderBy order.By, page page.Page) ([]auditbus.Entry, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		entry_id, actor_id, actor_email, action, entity, entity_id, detail, created_at
	FROM
		"public"."audit_log"`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbEs []entryDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbEs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusEntries(dbEs)
}

// Count returns the total number of entries in the DB.
func (s *Store) Count(ctx context.Context, filter auditbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		"public"."audit_log"`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// QueryByID gets the specified entry from the database.
func (s *Store) QueryByID(ctx context.Context, entryID uuid.UUID) (auditbus.Entry, error) {
	data := struct {
		ID string `db:"entry_id"`
	}{
		ID: entryID.String(),
	}

	const q = `
	SELECT
		entry_id, actor_id, actor_email, action, entity, entity_id, detail, created_at
	FROM
		"public"."audit_log"
	WHERE
		entry_id = :entry_id`

	var dbE entryDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbE); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return auditbus.Entry{}, fmt.Errorf("db: %w", auditbus.ErrNotFound)
		}
		return auditbus.Entry{}, fmt.Errorf("db: %w", err)
	}

	return toBusEntry(dbE)
}

func applyFilter(filter auditbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ActorID != nil {
		data["actor_id"] = *filter.ActorID
		wc = append(wc, "actor_id = :actor_id")
	}

	if filter.Action != nil {
		data["action"] = *filter.Action
		wc = append(wc, "action = :action")
	}

	if filter.Entity != nil {
		data["entity"] = *filter.Entity
		wc = append(wc, "entity = :entity")
	}

	if filter.EntityID != nil {
		data["entity_id"] = *filter.EntityID
		wc = append(wc, "entity_id = :entity_id")
	}

	if filter.StartCreatedAt != nil {
		data["start_created_at"] = filter.StartCreatedAt.UTC()
		wc = append(wc, "created_at >= :start_created_at")
	}

	if filter.EndCreatedAt != nil {
		data["end_created_at"] = filter.EndCreatedAt.UTC()
		wc = append(wc, "created_at <= :end_created_at")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}

func orderByClause(orderBy order.By) (string, error) {
	byFields := map[string]string{
		auditbus.OrderByCreatedAt: "created_at",
		auditbus.OrderByAction:    "action",
		auditbus.OrderByEntity:    "entity",
	}

	by, exists := byFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
