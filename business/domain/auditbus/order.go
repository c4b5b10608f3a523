package auditbus

import "github.com/intradir/intradir/business/sdk/order"

var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

const (
	OrderByCreatedAt = "created_at"
	OrderByAction    = "action"
	OrderByEntity    = "entity"
)
