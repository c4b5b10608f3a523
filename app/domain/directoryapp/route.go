package directoryapp

import (
	"net/http"

	"github.com/intradir/intradir/business/domain/directorybus"
	"github.com/intradir/intradir/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	DirectoryBus *directorybus.Core
}

// Routes adds specific routes for this group. Directory search serves the
// addin surface alongside presence.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.DirectoryBus)

	app.HandlerFunc(http.MethodGet, version, "/directory/search", api.search)
	app.HandlerFunc(http.MethodGet, version, "/directory/users/{login}", api.queryByLogin)
}
