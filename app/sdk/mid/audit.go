package mid

import (
	"context"
	"net/http"

	"github.com/intradir/intradir/business/domain/auditbus"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/foundation/logger"
)

// Audit records mutating requests against the named entity in the audit
// log after the handler succeeds. A failed write is logged but never
// fails the request.
func Audit(log *logger.Logger, auditBus *auditbus.Core, entity string) web.MidFunc {
	actions := map[string]string{
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodPatch:  "update",
		http.MethodDelete: "delete",
	}

	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			action, mutating := actions[r.Method]
			if !mutating || checkIsError(resp) != nil {
				return resp
			}

			ne := auditbus.NewEntry{
				ActorID:  GetSubjectID(ctx),
				Action:   action,
				Entity:   entity,
				EntityID: web.Param(r, "id"),
				Detail: map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				},
			}

			if usr, err := GetUser(ctx); err == nil {
				ne.ActorEmail = usr.Email.Address
			}

			if _, err := auditBus.Create(ctx, ne); err != nil {
				log.Error(ctx, "audit write failed", "err", err, "entity", entity, "action", action)
			}

			return resp
		}

		return h
	}

	return m
}
