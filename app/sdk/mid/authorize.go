package mid

import (
	"context"
	"net/http"

	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/business/types/role"
)

// Authorize validates that the authenticated user holds one of the
// allowed roles for the route.
func Authorize(a *auth.Auth, allowedRoles ...role.Role) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			claims := GetClaims(ctx)

			if err := a.Authorize(ctx, claims, allowedRoles...); err != nil {
				return errs.New(errs.PermissionDenied, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
