// Package domainapp maintains the app layer api for the SMTP domain
// routing table.
package domainapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/app/sdk/mid"
	"github.com/intradir/intradir/app/sdk/query"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/web"
)

var orderByFields = map[string]string{
	"domain":     "domain",
	"priority":   "priority",
	"created_at": "created_at",
}

type app struct {
	routeBus   *routebus.Core
	tenancyBus *tenancybus.Core
}

func newApp(routeBus *routebus.Core, tenancyBus *tenancybus.Core) *app {
	return &app{
		routeBus:   routeBus,
		tenancyBus: tenancyBus,
	}
}

// executeUnderTransaction constructs a new app value using buses bound
// to the transaction the middleware opened for this request.
func (a *app) executeUnderTransaction(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return a, nil
	}

	routeBus, err := a.routeBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	tenancyBus, err := a.tenancyBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return newApp(routeBus, tenancyBus), nil
}

// create adds a new SMTP domain to the routing table. Overrides that
// escalate past the tenancy ceiling come back as field errors naming the
// offending flags.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app NewDomain
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nd, err := toBusNewDomain(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tn, err := a.tenancyBus.QueryByID(ctx, nd.TenancyID)
	if err != nil {
		if errors.Is(err, tenancybus.ErrNotFound) {
			return errs.NewFieldErrors("tenancyId", err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "query tenancy: %s", err)
	}

	d, err := a.routeBus.Create(ctx, tn, nd)
	if err != nil {
		if fe := violationFields(err); fe != nil {
			return fe
		}
		if errors.Is(err, routebus.ErrUniqueDomain) {
			return errs.New(errs.Aborted, routebus.ErrUniqueDomain)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: domain[%s]: %s", app.Domain, err)
	}

	return toAppDomain(d)
}

// update modifies an existing SMTP domain.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app UpdateDomain
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	d, encErr := a.domainByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	tn, err := a.tenancyBus.QueryByID(ctx, d.TenancyID)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "query tenancy: %s", err)
	}

	ud, err := toBusUpdateDomain(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updD, err := a.routeBus.Update(ctx, tn, d, ud)
	if err != nil {
		if fe := violationFields(err); fe != nil {
			return fe
		}
		if errors.Is(err, routebus.ErrUniqueDomain) {
			return errs.New(errs.Aborted, routebus.ErrUniqueDomain)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: domainID[%s]: %s", d.ID, err)
	}

	return toAppDomain(updD)
}

// delete removes an SMTP domain from the routing table.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	d, encErr := a.domainByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	if err := a.routeBus.Delete(ctx, d); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: domainID[%s]: %s", d.ID, err)
	}

	return nil
}

// query returns a list of SMTP domains with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	values := r.URL.Query()

	pg, err := page.Parse(values.Get("page"), values.Get("rows"))
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	orderBy, err := order.Parse(orderByFields, values.Get("orderBy"), routebus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	ds, err := a.routeBus.Query(ctx, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.routeBus.Count(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppDomains(ds), total, pg)
}

// queryByID returns an SMTP domain by its ID.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	d, encErr := a.domainByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	return toAppDomain(d)
}

func (a *app) domainByID(ctx context.Context, r *http.Request) (routebus.Domain, web.Encoder) {
	id, err := uuid.Parse(web.Param(r, "id"))
	if err != nil {
		return routebus.Domain{}, errs.NewFieldErrors("id", err)
	}

	d, err := a.routeBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, routebus.ErrNotFound) {
			return routebus.Domain{}, errs.New(errs.NotFound, err)
		}
		return routebus.Domain{}, errs.Errorf(errs.InternalOnlyLog, "query: domainID[%s]: %s", id, err)
	}

	return d, nil
}

// violationFields converts override violations into field errors keyed by
// the flag names the admin form shows.
func violationFields(err error) errs.FieldErrors {
	var vs routebus.OverrideViolations
	if !errors.As(err, &vs) {
		return nil
	}

	var fe errs.FieldErrors
	for _, v := range vs {
		fe.Add(v.Flag, v)
	}

	return fe
}
