package adminuserapp

import (
	"net/http"

	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/app/sdk/mid"
	"github.com/intradir/intradir/business/domain/adminbus"
	"github.com/intradir/intradir/business/domain/auditbus"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/business/types/role"
	"github.com/intradir/intradir/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *logger.Logger
	Auth     *auth.Auth
	AdminBus *adminbus.Core
	AuditBus *auditbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	admin := mid.Authorize(cfg.Auth, role.Admin)
	audit := mid.Audit(cfg.Log, cfg.AuditBus, "user")

	api := newApp(cfg.AdminBus)

	app.HandlerFunc(http.MethodGet, version, "/admin/users", api.query, authen, admin)
	app.HandlerFunc(http.MethodGet, version, "/admin/users/{id}", api.queryByID, authen, admin)
	app.HandlerFunc(http.MethodPost, version, "/admin/users", api.create, authen, admin, audit)
	app.HandlerFunc(http.MethodPut, version, "/admin/users/{id}", api.update, authen, admin, audit)
	app.HandlerFunc(http.MethodDelete, version, "/admin/users/{id}", api.delete, authen, admin, audit)
}
