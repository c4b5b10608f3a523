// Package routebus provides business access to SMTP domain routing: the
// mapping of sender mail domains onto Office 365 tenancies and the
// capability flags in effect for each pair.
package routebus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/intradir/intradir/foundation/otel"
)

var (
	// ErrNotFound reports that no routing record matches. Most senders have
	// no explicit routing, so callers treat this as an ordinary outcome.
	ErrNotFound = errors.New("domain not found")

	ErrUniqueDomain = errors.New("domain is not unique")
)

// Storer defines the behavior required by the routebus to interact with
// the database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, d Domain) error
	Update(ctx context.Context, d Domain) error
	Delete(ctx context.Context, d Domain) error
	Query(ctx context.Context, orderBy order.By, page page.Page) ([]Domain, error)
	Count(ctx context.Context) (int, error)
	QueryByID(ctx context.Context, domainID uuid.UUID) (Domain, error)
	QueryByDomain(ctx context.Context, domain hostdomain.HostDomain) (Domain, error)
}

// DefaultOrderBy is the ordering applied when the caller specifies none.
var DefaultOrderBy = order.NewBy("domain", order.ASC)

// Core manages the set of APIs for SMTP domain routing.
type Core struct {
	log        *logger.Logger
	tenancyBus *tenancybus.Core
	storer     Storer
}

// NewCore constructs a core for routing api access.
func NewCore(log *logger.Logger, tenancyBus *tenancybus.Core, storer Storer) *Core {
	return &Core{
		log:        log,
		tenancyBus: tenancyBus,
		storer:     storer,
	}
}

// NewWithTx constructs a new Core value replacing the Storer value with a
// Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	tenancyBus, err := c.tenancyBus.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, tenancyBus, storer), nil
}

// Create adds a new SMTP domain under the given tenancy. The overrides are
// validated against the tenancy's flag ceiling before anything is
// persisted.
func (c *Core) Create(ctx context.Context, tn tenancybus.Tenancy, nd NewDomain) (Domain, error) {
	ctx, span := otel.AddSpan(ctx, "business.routebus.create")
	defer span.End()

	if err := ValidateOverrides(tn, nd.Overrides); err != nil {
		return Domain{}, err
	}

	now := time.Now()

	d := Domain{
		ID:        uuid.New(),
		TenancyID: tn.ID,
		Domain:    nd.Domain,
		Priority:  nd.Priority,
		Overrides: nd.Overrides,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storer.Create(ctx, d); err != nil {
		return Domain{}, fmt.Errorf("create: %w", err)
	}

	return d, nil
}

// Update modifies data about an SMTP domain. The same override validation
// applied on create runs again against the parent tenancy.
func (c *Core) Update(ctx context.Context, tn tenancybus.Tenancy, d Domain, ud UpdateDomain) (Domain, error) {
	ctx, span := otel.AddSpan(ctx, "business.routebus.update")
	defer span.End()

	if ud.Domain != nil {
		d.Domain = *ud.Domain
	}

	if ud.Priority != nil {
		d.Priority = *ud.Priority
	}

	if ud.Overrides != nil {
		d.Overrides = *ud.Overrides
	}

	if err := ValidateOverrides(tn, d.Overrides); err != nil {
		return Domain{}, err
	}

	d.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, d); err != nil {
		return Domain{}, fmt.Errorf("update: %w", err)
	}

	return d, nil
}

// Delete removes the specified SMTP domain from the system.
func (c *Core) Delete(ctx context.Context, d Domain) error {
	ctx, span := otel.AddSpan(ctx, "business.routebus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, d); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing SMTP domains.
func (c *Core) Query(ctx context.Context, orderBy order.By, page page.Page) ([]Domain, error) {
	ctx, span := otel.AddSpan(ctx, "business.routebus.query")
	defer span.End()

	domains, err := c.storer.Query(ctx, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return domains, nil
}

// Count returns the total number of SMTP domains.
func (c *Core) Count(ctx context.Context) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.routebus.count")
	defer span.End()

	return c.storer.Count(ctx)
}

// QueryByID finds the SMTP domain by the specified ID.
func (c *Core) QueryByID(ctx context.Context, domainID uuid.UUID) (Domain, error) {
	ctx, span := otel.AddSpan(ctx, "business.routebus.queryByID")
	defer span.End()

	d, err := c.storer.QueryByID(ctx, domainID)
	if err != nil {
		return Domain{}, fmt.Errorf("query: domainID[%s]: %w", domainID, err)
	}

	return d, nil
}

// ResolveDomain translates a sender mail domain into the tenancy that
// serves it plus the effective capability flags. The highest priority
// record wins; ties fall back to creation order. A disabled tenancy is
// still returned so callers can decide whether to short-circuit.
func (c *Core) ResolveDomain(ctx context.Context, domain hostdomain.HostDomain) (Route, error) {
	ctx, span := otel.AddSpan(ctx, "business.routebus.resolveDomain")
	defer span.End()

	d, err := c.storer.QueryByDomain(ctx, domain)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Route{}, ErrNotFound
		}
		return Route{}, fmt.Errorf("queryByDomain[%s]: %w", domain, err)
	}

	tn, err := c.tenancyBus.QueryByID(ctx, d.TenancyID)
	if err != nil {
		return Route{}, fmt.Errorf("queryByID: tenancyID[%s]: %w", d.TenancyID, err)
	}

	return Route{
		Tenancy: tn,
		Domain:  d,
		Flags:   Effective(tn.Flags, d.Overrides),
	}, nil
}

// ResolveEmail is a convenience wrapper that extracts the domain portion
// of a sender address and resolves it.
func (c *Core) ResolveEmail(ctx context.Context, email string) (Route, error) {
	domain, err := hostdomain.FromEmail(email)
	if err != nil {
		return Route{}, fmt.Errorf("fromEmail: %w", err)
	}

	return c.ResolveDomain(ctx, domain)
}
