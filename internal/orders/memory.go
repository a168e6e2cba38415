package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

type memoryRepository struct {
	mu     sync.Mutex
	orders map[string]Order
}

// NewMemoryRepository builds an isolated in-memory repository seeded with
// the given rows.
func NewMemoryRepository(orders []Order) Repository {
	repo := &memoryRepository{orders: make(map[string]Order, len(orders))}
	for _, o := range orders {
		repo.orders[o.ID] = cloneOrder(o)
	}
	return repo
}

func (r *memoryRepository) List(_ context.Context, filters OrderFilters) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Order
	for _, o := range r.orders {
		if filters.ResellerID != nil && o.ResellerID != *filters.ResellerID {
			continue
		}
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *memoryRepository) Create(_ context.Context, order Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return Order{}, shared.ErrDuplicate
	}
	r.orders[order.ID] = cloneOrder(order)
	return order, nil
}

func (r *memoryRepository) Update(_ context.Context, order Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[order.ID]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	order.CreatedAt = existing.CreatedAt
	order.ResellerID = existing.ResellerID
	order.Status = existing.Status
	r.orders[order.ID] = cloneOrder(order)
	return order, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id string, from, to OrderStatus) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	if o.Status != from {
		return Order{}, shared.ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return cloneOrder(o), nil
}

func (r *memoryRepository) ReferencesClient(_ context.Context, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ClientID == clientID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) ReferencesProduct(_ context.Context, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		for _, line := range o.Lines {
			if line.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func cloneOrder(o Order) Order {
	clone := o
	clone.Lines = append([]OrderLine(nil), o.Lines...)
	return clone
}
