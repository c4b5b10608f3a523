package adminbus

import "github.com/intradir/intradir/business/sdk/order"

var DefaultOrderBy = order.NewBy(OrderByName, order.ASC)

const (
	OrderByID      = "id"
	OrderByName    = "name"
	OrderByEmail   = "email"
	OrderByRole    = "role"
	OrderByEnabled = "enabled"
)
