package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// IdempotencyGuard is the slice of the idempotency store the ledger
// needs for duplicate-retry detection.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ReferenceCheck reports whether any order line still references the
// product. Both backends consult it so delete semantics stay identical.
type ReferenceCheck func(ctx context.Context, productID string) (bool, error)

// Service coordinates catalog operations: validation, id assignment and
// the stock ledger rules shared by every backend.
type Service struct {
	repo        Repository
	idempotency IdempotencyGuard
	refs        ReferenceCheck
}

// NewService builds Service. The idempotency guard may be nil when the
// backend has no durable key table (in-memory mode); a nil reference
// check skips the order-line guard on delete.
func NewService(repo Repository, idem IdempotencyGuard, refs ReferenceCheck) *Service {
	return &Service{repo: repo, idempotency: idem, refs: refs}
}

// List returns products matching every supplied filter, newest first.
func (s *Service) List(ctx context.Context, filters ProductFilters) ([]Product, error) {
	return s.repo.List(ctx, filters)
}

// Get returns the product or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the input, assigns id and timestamps and persists.
func (s *Service) Create(ctx context.Context, input CreateProductInput) (Product, error) {
	if err := validateCreate(input); err != nil {
		return Product{}, err
	}
	now := time.Now().UTC()
	product := Product{
		ID:           uuid.NewString(),
		Reference:    input.Reference,
		Name:         strings.TrimSpace(input.Name),
		Category:     input.Category,
		Unit:         strings.TrimSpace(input.Unit),
		Color:        input.Color,
		Price:        input.Price,
		Quantity:     input.Quantity,
		PurchaseDate: input.PurchaseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, product)
}

// Update applies the partial input to an existing product.
func (s *Service) Update(ctx context.Context, input UpdateProductInput) (Product, error) {
	existing, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return Product{}, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Product{}, shared.NewValidationError("name", "name is required")
		}
		existing.Name = name
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return Product{}, shared.NewValidationError("category", fmt.Sprintf("unknown category %q", *input.Category))
		}
		existing.Category = *input.Category
	}
	if input.Unit != nil {
		existing.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.Reference != nil {
		existing.Reference = input.Reference
	}
	if input.Color != nil {
		existing.Color = input.Color
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return Product{}, shared.NewValidationError("price", "price must not be negative")
		}
		existing.Price = *input.Price
	}
	if input.PurchaseDate != nil {
		existing.PurchaseDate = input.PurchaseDate
	}
	existing.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, existing)
}

// Delete removes the product. Products referenced by ledger entries are
// kept: the movement history is the audit trail and must not dangle.
func (s *Service) Delete(ctx context.Context, id string) error {
	count, err := s.repo.CountMovements(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewValidationError("id", "product has stock movements and cannot be deleted")
	}
	if s.refs != nil {
		referenced, err := s.refs(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return shared.NewValidationError("id", "product is referenced by order lines and cannot be deleted")
		}
	}
	return s.repo.Delete(ctx, id)
}

// AdjustQuantity runs the stock ledger: sufficiency check, quantity write
// and movement append as one atomic unit. A duplicate idempotency key
// discards the retry without applying it twice.
func (s *Service) AdjustQuantity(ctx context.Context, input AdjustmentInput) (Product, StockMovement, error) {
	if input.Delta == 0 {
		return Product{}, StockMovement{}, shared.NewValidationError("delta", "delta must be non-zero")
	}
	reason := input.Reason
	if reason == "" {
		reason = ReasonAdjustment
	}

	key := ""
	if s.idempotency != nil && input.IdempotencyKey != "" {
		key = fmt.Sprintf("stock:%s:%s", input.ProductID, input.IdempotencyKey)
		if err := s.idempotency.CheckAndInsert(ctx, key, "catalog"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Product{}, StockMovement{}, fmt.Errorf("%w: adjustment with key %q already applied", shared.ErrDuplicate, input.IdempotencyKey)
			}
			return Product{}, StockMovement{}, err
		}
	}

	product, movement, err := s.repo.AdjustQuantity(ctx, input.ProductID, input.Delta, reason)
	if err != nil {
		if key != "" {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Product{}, StockMovement{}, err
	}
	return product, movement, nil
}

// Movements lists the product's ledger entries, newest first.
func (s *Service) Movements(ctx context.Context, productID string) ([]StockMovement, error) {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, productID)
}

func validateCreate(input CreateProductInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if !input.Category.Valid() {
		fields["category"] = fmt.Sprintf("unknown category %q", input.Category)
	}
	if strings.TrimSpace(input.Unit) == "" {
		fields["unit"] = "unit is required"
	}
	if input.Price < 0 {
		fields["price"] = "price must not be negative"
	}
	if input.Quantity < 0 {
		fields["quantity"] = "quantity must not be negative"
	}
	if len(fields) > 0 {
		return &shared.ValidationError{Fields: fields}
	}
	return nil
}
