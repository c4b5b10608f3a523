// Package presenceapp serves the addin-facing presence and out-of-office
// lookups. Responses always carry HTTP 200 with an envelope; the addin
// treats missing data as a render decision, not a failure.
package presenceapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/foundation/logger"
)

type app struct {
	log         *logger.Logger
	routeBus    *routebus.Core
	presenceBus *presencebus.Core
}

func newApp(log *logger.Logger, routeBus *routebus.Core, presenceBus *presencebus.Core) *app {
	return &app{
		log:         log,
		routeBus:    routeBus,
		presenceBus: presenceBus,
	}
}

// lookup serves GET /v1/presence/{email}.
func (a *app) lookup(ctx context.Context, r *http.Request) web.Encoder {
	email := web.Param(r, "email")

	route, env := a.resolve(ctx, email)
	if env != nil {
		return *env
	}

	if !route.Flags.Presence {
		return deny(reasonFeatureDisabled)
	}

	snap, err := a.presenceBus.Lookup(ctx, route.Tenancy, email, parseOptions(r))
	if err != nil {
		if errors.Is(err, presencebus.ErrNoPresence) {
			return deny(reasonNoPresence)
		}
		return fail()
	}

	return toEnvelope(snap)
}

// outOfOffice serves GET /v1/outofoffice/{email}.
func (a *app) outOfOffice(ctx context.Context, r *http.Request) web.Encoder {
	email := web.Param(r, "email")

	route, env := a.resolve(ctx, email)
	if env != nil {
		return *env
	}

	if !route.Flags.OutOfOffice {
		return deny(reasonFeatureDisabled)
	}

	ooo, err := a.presenceBus.LookupOutOfOffice(ctx, route.Tenancy, email, parseOptions(r))
	if err != nil {
		if errors.Is(err, presencebus.ErrNoPresence) {
			return deny(reasonNoPresence)
		}
		return fail()
	}

	return toOOOEnvelope(ooo)
}

// resolve maps the sender address to a route and applies the gate checks
// shared by every addin lookup.
func (a *app) resolve(ctx context.Context, email string) (routebus.Route, *envelope) {
	route, err := a.routeBus.ResolveEmail(ctx, email)
	if err != nil {
		var env envelope
		switch {
		case errors.Is(err, hostdomain.ErrInvalid):
			env = deny(reasonInvalidEmail)
		case errors.Is(err, routebus.ErrNotFound):
			env = deny(reasonUnmappedDomain)
		default:
			a.log.Error(ctx, "presenceapp: resolve", "err", err)
			env = fail()
		}
		return routebus.Route{}, &env
	}

	if !route.Tenancy.Enabled {
		env := deny(reasonTenancyDisabled)
		return routebus.Route{}, &env
	}

	return route, nil
}

func parseOptions(r *http.Request) presencebus.LookupOptions {
	values := r.URL.Query()

	noCache, _ := strconv.ParseBool(values.Get("noCache"))

	return presencebus.LookupOptions{
		NoCache: noCache,
		TTL:     presencebus.ParseTTL(values.Get("ttl")),
	}
}
