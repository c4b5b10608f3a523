// Package tenancyapp maintains the app layer api for the tenancy domain.
package tenancyapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/app/sdk/mid"
	"github.com/intradir/intradir/app/sdk/query"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/web"
)

var orderByFields = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type app struct {
	tenancyBus *tenancybus.Core
}

func newApp(tenancyBus *tenancybus.Core) *app {
	return &app{
		tenancyBus: tenancyBus,
	}
}

// executeUnderTransaction constructs a new app value using a bus bound
// to the transaction the middleware opened for this request.
func (a *app) executeUnderTransaction(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return a, nil
	}

	tenancyBus, err := a.tenancyBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return newApp(tenancyBus), nil
}

// create adds a new tenancy to the system.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app NewTenancy
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nt, err := toBusNewTenancy(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tn, err := a.tenancyBus.Create(ctx, nt)
	if err != nil {
		if errors.Is(err, tenancybus.ErrUniqueTenantID) {
			return errs.New(errs.Aborted, tenancybus.ErrUniqueTenantID)
		}
		if errors.Is(err, tenancybus.ErrUniqueName) {
			return errs.New(errs.Aborted, tenancybus.ErrUniqueName)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: tenancy[%+v]: %s", app.Name, err)
	}

	return toAppTenancy(tn)
}

// update modifies an existing tenancy.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var app UpdateTenancy
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tn, encErr := a.tenancyByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	ut, err := toBusUpdateTenancy(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updTn, err := a.tenancyBus.Update(ctx, tn, ut)
	if err != nil {
		if errors.Is(err, tenancybus.ErrUniqueName) {
			return errs.New(errs.Aborted, tenancybus.ErrUniqueName)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: tenancyID[%s]: %s", tn.ID, err)
	}

	return toAppTenancy(updTn)
}

// delete removes a tenancy and, by cascade, its SMTP domains.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.executeUnderTransaction(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	tn, encErr := a.tenancyByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	if err := a.tenancyBus.Delete(ctx, tn); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: tenancyID[%s]: %s", tn.ID, err)
	}

	return nil
}

// query returns a list of tenancies with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	values := r.URL.Query()

	pg, err := page.Parse(values.Get("page"), values.Get("rows"))
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	orderBy, err := order.Parse(orderByFields, values.Get("orderBy"), tenancybus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	tns, err := a.tenancyBus.Query(ctx, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.tenancyBus.Count(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppTenancies(tns), total, pg)
}

// queryByID returns a tenancy by its ID.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	tn, encErr := a.tenancyByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	return toAppTenancy(tn)
}

func (a *app) tenancyByID(ctx context.Context, r *http.Request) (tenancybus.Tenancy, web.Encoder) {
	id, err := uuid.Parse(web.Param(r, "id"))
	if err != nil {
		return tenancybus.Tenancy{}, errs.NewFieldErrors("id", err)
	}

	tn, err := a.tenancyBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, tenancybus.ErrNotFound) {
			return tenancybus.Tenancy{}, errs.New(errs.NotFound, err)
		}
		return tenancybus.Tenancy{}, errs.Errorf(errs.InternalOnlyLog, "query: tenancyID[%s]: %s", id, err)
	}

	return tn, nil
}
