// Package directoryapp maintains the app layer api for directory search.
package directoryapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/business/domain/directorybus"
	"github.com/intradir/intradir/business/sdk/web"
)

type app struct {
	directoryBus *directorybus.Core
}

func newApp(directoryBus *directorybus.Core) *app {
	return &app{
		directoryBus: directoryBus,
	}
}

// search serves GET /v1/directory/search?q=...&limit=...
func (a *app) search(ctx context.Context, r *http.Request) web.Encoder {
	values := r.URL.Query()

	q := values.Get("q")
	if q == "" {
		return errs.NewFieldErrors("q", errors.New("query is required"))
	}

	limit := 0
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.NewFieldErrors("limit", err)
		}
		limit = n
	}

	people, err := a.directoryBus.Search(ctx, q, limit)
	if err != nil {
		return errs.Errorf(errs.Internal, "search: %s", err)
	}

	return toAppPeople(people)
}

// queryByLogin serves GET /v1/directory/users/{login}.
func (a *app) queryByLogin(ctx context.Context, r *http.Request) web.Encoder {
	login := web.Param(r, "login")

	person, err := a.directoryBus.QueryByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, directorybus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.Internal, "querybylogin: %s", err)
	}

	return toAppPerson(person)
}
