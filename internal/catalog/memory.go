package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// memoryRepository is the in-process backend: an explicit store object
// constructed by the caller, seeded with whatever fixtures it needs, with
// a mutex serializing every operation so concurrent adjustments on the
// same product cannot race.
type memoryRepository struct {
	mu        sync.Mutex
	products  map[string]Product
	movements []StockMovement
}

// NewMemoryRepository builds an isolated in-memory repository seeded with
// the given rows.
func NewMemoryRepository(products []Product, movements []StockMovement) Repository {
	repo := &memoryRepository{products: make(map[string]Product, len(products))}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	repo.movements = append(repo.movements, movements...)
	return repo
}

func (r *memoryRepository) List(_ context.Context, filters ProductFilters) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Product
	for _, p := range r.products {
		if !matchesFilters(p, filters) {
			continue
		}
		result = append(result, p)
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) Create(_ context.Context, product Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return Product{}, shared.ErrDuplicate
	}
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepository) Update(_ context.Context, product Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	// Quantity only moves through AdjustQuantity.
	product.Quantity = existing.Quantity
	product.CreatedAt = existing.CreatedAt
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryRepository) AdjustQuantity(_ context.Context, id string, delta int, reason string) (Product, StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return Product{}, StockMovement{}, shared.ErrNotFound
	}
	newQuantity := p.Quantity + delta
	if newQuantity < 0 {
		return Product{}, StockMovement{}, shared.ErrInsufficientStock
	}
	now := time.Now().UTC()
	p.Quantity = newQuantity
	p.UpdatedAt = now
	r.products[id] = p

	movement := StockMovement{
		ID:        uuid.NewString(),
		ProductID: id,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: now,
	}
	r.movements = append(r.movements, movement)
	return p, movement, nil
}

func (r *memoryRepository) ListMovements(_ context.Context, productID string) ([]StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryRepository) CountMovements(_ context.Context, productID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func matchesFilters(p Product, filters ProductFilters) bool {
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		name := strings.ToLower(p.Name)
		reference := ""
		if p.Reference != nil {
			reference = strings.ToLower(*p.Reference)
		}
		if !strings.Contains(name, needle) && !strings.Contains(reference, needle) {
			return false
		}
	}
	if filters.Category != nil && p.Category != *filters.Category {
		return false
	}
	if filters.Color != nil {
		if p.Color == nil || !strings.EqualFold(*p.Color, *filters.Color) {
			return false
		}
	}
	return true
}

func sortNewestFirst(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
}
