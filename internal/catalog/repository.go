package catalog

import "context"

// Repository is the backend contract for the product family. Every
// implementation must behave identically: newest-first listing with id
// tiebreak, taxonomy errors, and an AdjustQuantity that applies the
// sufficiency check and the write as one atomic unit per product.
type Repository interface {
	List(ctx context.Context, filters ProductFilters) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id string) error

	// AdjustQuantity atomically applies delta to the product's quantity and
	// appends the movement record. It fails with shared.ErrInsufficientStock
	// and performs no mutation when the resulting quantity would be negative.
	AdjustQuantity(ctx context.Context, id string, delta int, reason string) (Product, StockMovement, error)

	// ListMovements returns the product's ledger entries, newest first.
	ListMovements(ctx context.Context, productID string) ([]StockMovement, error)

	// CountMovements reports how many ledger entries reference the product.
	CountMovements(ctx context.Context, productID string) (int, error)
}
