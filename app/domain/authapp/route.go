package authapp

import (
	"net/http"

	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth  *auth.Auth
	KeyID string
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Auth, cfg.KeyID)

	app.HandlerFunc(http.MethodPost, version, "/auth/login", api.login)
}
