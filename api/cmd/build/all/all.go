// Package all binds every route into the single binary.
package all

import (
	"github.com/intradir/intradir/app/domain/adminuserapp"
	"github.com/intradir/intradir/app/domain/auditapp"
	"github.com/intradir/intradir/app/domain/authapp"
	"github.com/intradir/intradir/app/domain/checkapp"
	"github.com/intradir/intradir/app/domain/directoryapp"
	"github.com/intradir/intradir/app/domain/domainapp"
	"github.com/intradir/intradir/app/domain/presenceapp"
	"github.com/intradir/intradir/app/domain/tenancyapp"
	"github.com/intradir/intradir/app/sdk/mux"
	"github.com/intradir/intradir/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

func (add) Add(app *web.App, cfg mux.Config) {
	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	presenceapp.Routes(app, presenceapp.Config{
		Log:         cfg.Log,
		RouteBus:    cfg.BusConfig.RouteBus,
		PresenceBus: cfg.BusConfig.PresenceBus,
	})

	directoryapp.Routes(app, directoryapp.Config{
		DirectoryBus: cfg.BusConfig.DirectoryBus,
	})

	authapp.Routes(app, authapp.Config{
		Auth:  cfg.AuthConfig.Auth,
		KeyID: cfg.AuthConfig.KeyID,
	})

	tenancyapp.Routes(app, tenancyapp.Config{
		Log:        cfg.Log,
		DB:         cfg.DB,
		Auth:       cfg.AuthConfig.Auth,
		TenancyBus: cfg.BusConfig.TenancyBus,
		AuditBus:   cfg.BusConfig.AuditBus,
	})

	domainapp.Routes(app, domainapp.Config{
		Log:        cfg.Log,
		DB:         cfg.DB,
		Auth:       cfg.AuthConfig.Auth,
		RouteBus:   cfg.BusConfig.RouteBus,
		TenancyBus: cfg.BusConfig.TenancyBus,
		AuditBus:   cfg.BusConfig.AuditBus,
	})

	adminuserapp.Routes(app, adminuserapp.Config{
		Log:      cfg.Log,
		Auth:     cfg.AuthConfig.Auth,
		AdminBus: cfg.BusConfig.AdminBus,
		AuditBus: cfg.BusConfig.AuditBus,
	})

	auditapp.Routes(app, auditapp.Config{
		Auth:     cfg.AuthConfig.Auth,
		AuditBus: cfg.BusConfig.AuditBus,
	})
}
