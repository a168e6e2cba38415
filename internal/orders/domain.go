package orders

import "time"

// OrderStatus enumerates the fixed order workflow states.
type OrderStatus string

const (
	// OrderStatusPending is the initial state of every order.
	OrderStatusPending OrderStatus = "en_attente"
	// OrderStatusValidated means a manager accepted the order; stock is
	// committed at this point.
	OrderStatusValidated OrderStatus = "validée"
	// OrderStatusRefused is terminal.
	OrderStatusRefused OrderStatus = "refusée"
	// OrderStatusOrdered means the supplier order went out.
	OrderStatusOrdered OrderStatus = "commandée"
	// OrderStatusDelivered means the goods arrived.
	OrderStatusDelivered OrderStatus = "livrée"
	// OrderStatusPaid is terminal.
	OrderStatusPaid OrderStatus = "payée"
)

// orderTransitions is the closed transition table. Anything absent here
// is rejected.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusValidated, OrderStatusRefused},
	OrderStatusValidated: {OrderStatusOrdered},
	OrderStatusOrdered:   {OrderStatusDelivered},
	OrderStatusDelivered: {OrderStatusPaid},
}

// Valid reports whether the status belongs to the closed set.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusValidated, OrderStatusRefused,
		OrderStatusOrdered, OrderStatusDelivered, OrderStatusPaid:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves the status.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo consults the transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderLine is one product position on an order. Label and unit price are
// snapshotted from the catalog at creation time.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	Label     string  `json:"label"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is a reseller's purchase order moving through the status workflow.
type Order struct {
	ID         string      `json:"id"`
	ResellerID string      `json:"reseller_id"`
	ClientID   string      `json:"client_id"`
	Status     OrderStatus `json:"status"`
	Lines      []OrderLine `json:"lines"`
	Total      float64     `json:"total"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderLineInput references a catalog product; label and price are
// resolved server-side.
type OrderLineInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput carries the client-supplied fields of a new order.
type CreateOrderInput struct {
	ResellerID string
	ClientID   string
	Lines      []OrderLineInput
}

// UpdateOrderInput is a partial update, accepted only while the order is
// still en_attente.
type UpdateOrderInput struct {
	ID       string
	ClientID *string
	Lines    *[]OrderLineInput
}

// OrderFilters narrows a listing; absent fields impose no constraint.
type OrderFilters struct {
	ResellerID *string
	Status     *OrderStatus
}
