// Package tenancybus provides business access to Office 365 tenancy
// configuration in the system.
package tenancybus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/intradir/intradir/foundation/otel"
)

var (
	ErrNotFound       = errors.New("tenancy not found")
	ErrUniqueTenantID = errors.New("tenant id is not unique")
	ErrUniqueName     = errors.New("name is not unique")
)

// Storer defines the behavior required by the tenancybus to interact with
// the database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, t Tenancy) error
	Update(ctx context.Context, t Tenancy) error
	Delete(ctx context.Context, t Tenancy) error
	Query(ctx context.Context, orderBy order.By, page page.Page) ([]Tenancy, error)
	Count(ctx context.Context) (int, error)
	QueryByID(ctx context.Context, tenancyID uuid.UUID) (Tenancy, error)
}

// DefaultOrderBy is the ordering applied when the caller specifies none.
var DefaultOrderBy = order.NewBy("name", order.ASC)

// Core manages the set of APIs for tenancy access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a core for tenancy api access.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// NewWithTx constructs a new Core value replacing the Storer value with a
// Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, storer), nil
}

// Create adds a new tenancy to the system.
func (c *Core) Create(ctx context.Context, nt NewTenancy) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.create")
	defer span.End()

	now := time.Now()

	t := Tenancy{
		ID:           uuid.New(),
		Name:         nt.Name,
		TenantID:     nt.TenantID,
		ClientID:     nt.ClientID,
		ClientSecret: nt.ClientSecret,
		Enabled:      true,
		Flags:        nt.Flags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storer.Create(ctx, t); err != nil {
		return Tenancy{}, fmt.Errorf("create: %w", err)
	}

	return t, nil
}

// Update modifies data about a tenancy. TenantID and ClientID are never
// touched and the stored client secret survives unless a replacement is
// supplied.
//
// Lowering a capability flag does not cascade into existing domain
// overrides: a domain that explicitly enabled the capability keeps
// resolving to enabled until an admin revisits it. Override validation
// runs on the domain write path only.
func (c *Core) Update(ctx context.Context, t Tenancy, ut UpdateTenancy) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.update")
	defer span.End()

	if ut.Name != nil {
		t.Name = *ut.Name
	}

	if ut.ClientSecret != nil {
		t.ClientSecret = *ut.ClientSecret
	}

	if ut.Enabled != nil {
		t.Enabled = *ut.Enabled
	}

	if ut.Flags != nil {
		t.Flags = *ut.Flags
	}

	t.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, t); err != nil {
		return Tenancy{}, fmt.Errorf("update: %w", err)
	}

	return t, nil
}

// Delete removes the specified tenancy from the system. The database
// cascades the delete to the tenancy's SMTP domains.
func (c *Core) Delete(ctx context.Context, t Tenancy) error {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, t); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing tenancies.
func (c *Core) Query(ctx context.Context, orderBy order.By, page page.Page) ([]Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.query")
	defer span.End()

	tenancies, err := c.storer.Query(ctx, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return tenancies, nil
}

// Count returns the total number of tenancies.
func (c *Core) Count(ctx context.Context) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.count")
	defer span.End()

	return c.storer.Count(ctx)
}

// QueryByID finds the tenancy by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenancyID uuid.UUID) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.queryByID")
	defer span.End()

	t, err := c.storer.QueryByID(ctx, tenancyID)
	if err != nil {
		return Tenancy{}, fmt.Errorf("query: tenancyID[%s]: %w", tenancyID, err)
	}

	return t, nil
}
