package invoices

import "context"

// Repository is the backend contract for the invoice family.
type Repository interface {
	List(ctx context.Context, filters InvoiceFilters) ([]Invoice, error)
	Get(ctx context.Context, id string) (Invoice, error)
	Create(ctx context.Context, invoice Invoice) (Invoice, error)
	Update(ctx context.Context, invoice Invoice) (Invoice, error)
	Delete(ctx context.Context, id string) error

	// UpdateStatus persists the status column (plus updated_at) only when
	// the stored status still equals from, so concurrent transition
	// requests cannot both win. A lost race surfaces as
	// shared.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to InvoiceStatus) (Invoice, error)

	// ReferencesClient reports whether any quote references the client.
	ReferencesClient(ctx context.Context, clientID string) (bool, error)
}
