package model

type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceOrders   Resource = "orders"
	ResourceAgents   Resource = "agents"
)

// LookupParam is the upstream query parameter used for read-by-id.
func (r Resource) LookupParam() string {
	if r == ResourceProducts {
		return "code"
	}
	return "id"
}
