package presenceapp

import (
	"net/http"

	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *logger.Logger
	RouteBus    *routebus.Core
	PresenceBus *presencebus.Core
}

// Routes adds specific routes for this group. The addin surface carries
// no authentication; access control lives in the routing table.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Log, cfg.RouteBus, cfg.PresenceBus)

	app.HandlerFunc(http.MethodGet, version, "/presence/{email}", api.lookup)
	app.HandlerFunc(http.MethodGet, version, "/outofoffice/{email}", api.outOfOffice)
}
