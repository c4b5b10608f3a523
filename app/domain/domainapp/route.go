package domainapp

import (
	"net/http"

	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/app/sdk/mid"
	"github.com/intradir/intradir/business/domain/auditbus"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/business/types/role"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *logger.Logger
	DB         *sqlx.DB
	Auth       *auth.Auth
	RouteBus   *routebus.Core
	TenancyBus *tenancybus.Core
	AuditBus   *auditbus.Core
}

// Routes adds specific routes for this group. Mutations run inside a
// per-request transaction so the tenancy read and the routing write see
// one consistent view.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	admin := mid.Authorize(cfg.Auth, role.Admin)
	audit := mid.Audit(cfg.Log, cfg.AuditBus, "domain")
	tran := mid.BeginCommitRollback(cfg.Log, sqldb.NewBeginner(cfg.DB))

	api := newApp(cfg.RouteBus, cfg.TenancyBus)

	app.HandlerFunc(http.MethodGet, version, "/admin/domains", api.query, authen, admin)
	app.HandlerFunc(http.MethodGet, version, "/admin/domains/{id}", api.queryByID, authen, admin)
	app.HandlerFunc(http.MethodPost, version, "/admin/domains", api.create, authen, admin, audit, tran)
	app.HandlerFunc(http.MethodPut, version, "/admin/domains/{id}", api.update, authen, admin, audit, tran)
	app.HandlerFunc(http.MethodDelete, version, "/admin/domains/{id}", api.delete, authen, admin, audit, tran)
}
