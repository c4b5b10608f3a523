package auditapp

import (
	"net/http"

	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/app/sdk/mid"
	"github.com/intradir/intradir/business/domain/auditbus"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth     *auth.Auth
	AuditBus *auditbus.Core
}

// Routes adds specific routes for this group. The log is read-only over
// HTTP; writes happen through the audit middleware.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	admin := mid.Authorize(cfg.Auth, role.Admin)

	api := newApp(cfg.AuditBus)

	app.HandlerFunc(http.MethodGet, version, "/admin/audit", api.query, authen, admin)
}
