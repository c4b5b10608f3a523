// Package auditbus records administrative actions as an append-only log.
package auditbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/foundation/otel"
)

var (
	ErrNotFound = errors.New("entry not found")
)

type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, e Entry) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Entry, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, entryID uuid.UUID) (Entry, error)
}

type Core struct {
	storer Storer
}

func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer), nil
}

// Create appends a new entry to the log.
func (c *Core) Create(ctx context.Context, ne NewEntry) (Entry, error) {
	ctx, span := otel.AddSpan(ctx, "business.auditbus.create")
	defer span.End()

	e := Entry{
		ID:         uuid.New(),
		ActorID:    ne.ActorID,
		ActorEmail: ne.ActorEmail,
		Action:     ne.Action,
		Entity:     ne.Entity,
		EntityID:   ne.EntityID,
		Detail:     ne.Detail,
		CreatedAt:  time.Now(),
	}

	if err := c.storer.Create(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("create: %w", err)
	}

	return e, nil
}

// Query retrieves a list of entries.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Entry, error) {
	ctx, span := otel.AddSpan(ctx, "business.auditbus.query")
	defer span.End()

	entries, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return entries, nil
}

// Count returns the total number of entries.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.auditbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the entry by the specified ID.
func (c *Core) QueryByID(ctx context.Context, entryID uuid.UUID) (Entry, error) {
	ctx, span := otel.AddSpan(ctx, "business.auditbus.queryByID")
	defer span.End()

	e, err := c.storer.QueryByID(ctx, entryID)
	if err != nil {
		return Entry{}, fmt.Errorf("query: entryID[%s]: %w", entryID, err)
	}

	return e, nil
}
