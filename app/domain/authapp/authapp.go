// Package authapp maintains the app layer api for admin authentication.
package authapp

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/business/sdk/web"
)

type app struct {
	auth  *auth.Auth
	keyID string
}

func newApp(ath *auth.Auth, keyID string) *app {
	return &app{
		auth:  ath,
		keyID: keyID,
	}
}

// login exchanges admin credentials for a signed JWT.
func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var req Login
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing email: %w", err))
	}

	usr, err := a.auth.Login(ctx, *addr, req.Password)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	tokenStr, err := a.auth.GenerateToken(a.keyID, usr.ID, usr.Role)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	return toAppToken(tokenStr)
}
