package orders

import "context"

// Repository is the backend contract for the order family.
type Repository interface {
	List(ctx context.Context, filters OrderFilters) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	Create(ctx context.Context, order Order) (Order, error)
	Update(ctx context.Context, order Order) (Order, error)
	Delete(ctx context.Context, id string) error

	// UpdateStatus persists the status column (plus updated_at) only when
	// the stored status still equals from, so concurrent transition
	// requests cannot both win. A lost race surfaces as
	// shared.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to OrderStatus) (Order, error)

	// ReferencesClient reports whether any order references the client.
	ReferencesClient(ctx context.Context, clientID string) (bool, error)

	// ReferencesProduct reports whether any order line references the
	// product.
	ReferencesProduct(ctx context.Context, productID string) (bool, error)
}
