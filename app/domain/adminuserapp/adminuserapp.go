// Package adminuserapp maintains the app layer api for the administrator
// accounts.
package adminuserapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/app/sdk/query"
	"github.com/intradir/intradir/business/domain/adminbus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/web"
)

var orderByFields = map[string]string{
	"user_id": adminbus.OrderByID,
	"name":    adminbus.OrderByName,
	"email":   adminbus.OrderByEmail,
	"role":    adminbus.OrderByRole,
	"enabled": adminbus.OrderByEnabled,
}

type app struct {
	adminBus *adminbus.Core
}

func newApp(adminBus *adminbus.Core) *app {
	return &app{
		adminBus: adminBus,
	}
}

// create adds a new user to the system.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewUser
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nu, err := toBusNewUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := a.adminBus.Create(ctx, nu)
	if err != nil {
		if errors.Is(err, adminbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, adminbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: usr[%+v]: %s", app.Email, err)
	}

	return toAppUser(usr)
}

// update modifies an existing user.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateUser
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, encErr := a.userByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	uu, err := toBusUpdateUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updUsr, err := a.adminBus.Update(ctx, usr, uu)
	if err != nil {
		if errors.Is(err, adminbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, adminbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: userID[%s]: %s", usr.ID, err)
	}

	return toAppUser(updUsr)
}

// delete removes a user from the system.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	usr, encErr := a.userByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	if err := a.adminBus.Delete(ctx, usr); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: userID[%s]: %s", usr.ID, err)
	}

	return nil
}

// query returns a list of users with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	pg, err := page.Parse(qp.Page, qp.Rows)
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	filter, err := parseFilter(qp)
	if err != nil {
		if fe := errs.GetFieldErrors(err); fe != nil {
			return fe
		}
		return errs.NewFieldErrors("filter", err)
	}

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, adminbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	usrs, err := a.adminBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.adminBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppUsers(usrs), total, pg)
}

// queryByID returns a user by its ID.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	usr, encErr := a.userByID(ctx, r)
	if encErr != nil {
		return encErr
	}

	return toAppUser(usr)
}

func (a *app) userByID(ctx context.Context, r *http.Request) (adminbus.User, web.Encoder) {
	id, err := uuid.Parse(web.Param(r, "id"))
	if err != nil {
		return adminbus.User{}, errs.NewFieldErrors("id", err)
	}

	usr, err := a.adminBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, adminbus.ErrNotFound) {
			return adminbus.User{}, errs.New(errs.NotFound, err)
		}
		return adminbus.User{}, errs.Errorf(errs.InternalOnlyLog, "query: userID[%s]: %s", id, err)
	}

	return usr, nil
}
