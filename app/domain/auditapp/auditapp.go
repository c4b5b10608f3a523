// Package auditapp maintains the app layer api for reading the audit log.
package auditapp

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/app/sdk/query"
	"github.com/intradir/intradir/business/domain/auditbus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/web"
)

var orderByFields = map[string]string{
	"created_at": auditbus.OrderByCreatedAt,
	"action":     auditbus.OrderByAction,
	"entity":     auditbus.OrderByEntity,
}

type app struct {
	auditBus *auditbus.Core
}

func newApp(auditBus *auditbus.Core) *app {
	return &app{
		auditBus: auditBus,
	}
}

// query returns a list of audit entries with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	values := r.URL.Query()

	pg, err := page.Parse(values.Get("page"), values.Get("rows"))
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	filter, err := parseFilter(values.Get("actor_id"), values.Get("action"), values.Get("entity"), values.Get("entity_id"), values.Get("start_created_date"), values.Get("end_created_date"))
	if err != nil {
		if fe := errs.GetFieldErrors(err); fe != nil {
			return fe
		}
		return errs.NewFieldErrors("filter", err)
	}

	orderBy, err := order.Parse(orderByFields, values.Get("orderBy"), auditbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	entries, err := a.auditBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.auditBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppEntries(entries), total, pg)
}

func parseFilter(actorID, action, entity, entityID, startCreated, endCreated string) (auditbus.QueryFilter, error) {
	var fieldErrors errs.FieldErrors
	var filter auditbus.QueryFilter

	if actorID != "" {
		id, err := uuid.Parse(actorID)
		switch err {
		case nil:
			filter.ActorID = &id
		default:
			fieldErrors.Add("actor_id", err)
		}
	}

	if action != "" {
		filter.Action = &action
	}

	if entity != "" {
		filter.Entity = &entity
	}

	if entityID != "" {
		filter.EntityID = &entityID
	}

	if startCreated != "" {
		t, err := time.Parse(time.RFC3339, startCreated)
		switch err {
		case nil:
			filter.StartCreatedAt = &t
		default:
			fieldErrors.Add("start_created_date", err)
		}
	}

	if endCreated != "" {
		t, err := time.Parse(time.RFC3339, endCreated)
		switch err {
		case nil:
			filter.EndCreatedAt = &t
		default:
			fieldErrors.Add("end_created_date", err)
		}
	}

	if fieldErrors != nil {
		return auditbus.QueryFilter{}, fieldErrors
	}

	return filter, nil
}
