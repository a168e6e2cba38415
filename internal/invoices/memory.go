package invoices

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

type memoryRepository struct {
	mu       sync.Mutex
	invoices map[string]Invoice
}

// NewMemoryRepository builds an isolated in-memory repository seeded with
// the given rows.
func NewMemoryRepository(invoices []Invoice) Repository {
	repo := &memoryRepository{invoices: make(map[string]Invoice, len(invoices))}
	for _, inv := range invoices {
		repo.invoices[inv.ID] = cloneInvoice(inv)
	}
	return repo
}

func (r *memoryRepository) List(_ context.Context, filters InvoiceFilters) ([]Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Invoice
	for _, inv := range r.invoices {
		if filters.ResellerID != nil && inv.ResellerID != *filters.ResellerID {
			continue
		}
		if filters.Status != nil && inv.Status != *filters.Status {
			continue
		}
		result = append(result, cloneInvoice(inv))
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	return cloneInvoice(inv), nil
}

func (r *memoryRepository) Create(_ context.Context, invoice Invoice) (Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invoices[invoice.ID]; exists {
		return Invoice{}, shared.ErrDuplicate
	}
	r.invoices[invoice.ID] = cloneInvoice(invoice)
	return invoice, nil
}

func (r *memoryRepository) Update(_ context.Context, invoice Invoice) (Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.invoices[invoice.ID]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	invoice.CreatedAt = existing.CreatedAt
	invoice.ResellerID = existing.ResellerID
	invoice.Status = existing.Status
	r.invoices[invoice.ID] = cloneInvoice(invoice)
	return invoice, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id string, from, to InvoiceStatus) (Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	if inv.Status != from {
		return Invoice{}, shared.ErrInvalidTransition
	}
	inv.Status = to
	inv.UpdatedAt = time.Now().UTC()
	r.invoices[id] = inv
	return cloneInvoice(inv), nil
}

func (r *memoryRepository) ReferencesClient(_ context.Context, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inv := range r.invoices {
		if inv.ClientID == clientID {
			return true, nil
		}
	}
	return false, nil
}

func cloneInvoice(inv Invoice) Invoice {
	clone := inv
	clone.Lines = append([]InvoiceLine(nil), inv.Lines...)
	return clone
}
