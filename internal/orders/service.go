package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/authz"
	"github.com/comptoir-erp/comptoir-erp/internal/catalog"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// CatalogPort is the slice of the catalog contract the order workflow
// needs: price lookups at creation and the stock ledger at validation.
type CatalogPort interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
	AdjustQuantity(ctx context.Context, input catalog.AdjustmentInput) (catalog.Product, catalog.StockMovement, error)
}

// ClientPort verifies that the order's client exists within the caller's
// scope.
type ClientPort interface {
	Exists(ctx context.Context, identity auth.Identity, clientID string) error
}

// Service coordinates order operations: reseller scoping, the status
// transition table, and stock commitment when an order is validated.
type Service struct {
	repo    Repository
	catalog CatalogPort
	clients ClientPort
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(repo Repository, catalogPort CatalogPort, clientPort ClientPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalogPort, clients: clientPort, logger: logger}
}

// List returns orders visible to the caller, newest first.
func (s *Service) List(ctx context.Context, identity auth.Identity, filters OrderFilters) ([]Order, error) {
	if scope := authz.ResellerScope(identity); scope != nil {
		filters.ResellerID = scope
	}
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", *filters.Status))
	}
	return s.repo.List(ctx, filters)
}

// Get returns the order or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if scope := authz.ResellerScope(identity); scope != nil && order.ResellerID != *scope {
		return Order{}, shared.ErrNotFound
	}
	return order, nil
}

// Create validates the input, snapshots catalog prices into the lines and
// persists the order in its initial en_attente state.
func (s *Service) Create(ctx context.Context, identity auth.Identity, input CreateOrderInput) (Order, error) {
	owner := input.ResellerID
	if scope := authz.ResellerScope(identity); scope != nil {
		owner = *scope
	}
	if owner == "" {
		return Order{}, shared.NewValidationError("reseller_id", "owning reseller is required")
	}
	if input.ClientID == "" {
		return Order{}, shared.NewValidationError("client_id", "client is required")
	}
	if len(input.Lines) == 0 {
		return Order{}, shared.NewValidationError("lines", "at least one line is required")
	}
	if err := s.clients.Exists(ctx, identity, input.ClientID); err != nil {
		return Order{}, fmt.Errorf("verify client: %w", err)
	}

	lines, total, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return Order{}, err
	}

	now := time.Now().UTC()
	order := Order{
		ID:         uuid.NewString(),
		ResellerID: owner,
		ClientID:   input.ClientID,
		Status:     OrderStatusPending,
		Lines:      lines,
		Total:      total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.repo.Create(ctx, order)
}

// Update applies the partial input. Only en_attente orders may change.
func (s *Service) Update(ctx context.Context, identity auth.Identity, input UpdateOrderInput) (Order, error) {
	existing, err := s.Get(ctx, identity, input.ID)
	if err != nil {
		return Order{}, err
	}
	if existing.Status != OrderStatusPending {
		return Order{}, fmt.Errorf("%w: order is %s", shared.ErrInvalidState, existing.Status)
	}
	if input.ClientID != nil {
		if err := s.clients.Exists(ctx, identity, *input.ClientID); err != nil {
			return Order{}, fmt.Errorf("verify client: %w", err)
		}
		existing.ClientID = *input.ClientID
	}
	if input.Lines != nil {
		if len(*input.Lines) == 0 {
			return Order{}, shared.NewValidationError("lines", "at least one line is required")
		}
		lines, total, err := s.resolveLines(ctx, *input.Lines)
		if err != nil {
			return Order{}, err
		}
		existing.Lines = lines
		existing.Total = total
	}
	existing.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, existing)
}

// Delete removes the order. Deleting twice is an error the second time.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if _, err := s.Get(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetStatus advances the order through the transition table. The status
// write is a compare-and-set against the status the caller observed, so
// of two concurrent requests only one wins; the loser sees
// InvalidTransition and causes no side effect. Validating an order
// commits stock after the winning write: every line is drawn from the
// ledger, and a shortfall on any line rolls back the lines already drawn
// and restores the previous status.
func (s *Service) SetStatus(ctx context.Context, identity auth.Identity, id string, next OrderStatus) (Order, error) {
	if !next.Valid() {
		return Order{}, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", next))
	}
	existing, err := s.Get(ctx, identity, id)
	if err != nil {
		return Order{}, err
	}
	if !existing.Status.CanTransitionTo(next) {
		return Order{}, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, existing.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, existing.Status, next)
	if err != nil {
		return Order{}, err
	}

	if next == OrderStatusValidated {
		if err := s.commitStock(ctx, updated); err != nil {
			if _, revertErr := s.repo.UpdateStatus(ctx, id, next, existing.Status); revertErr != nil && s.logger != nil {
				s.logger.Error("restore status after failed commitment",
					slog.String("order_id", id),
					slog.Any("error", revertErr))
			}
			return Order{}, err
		}
	}
	return updated, nil
}

// commitStock draws every line from the ledger. On a shortfall the
// already-drawn lines are restored before the error surfaces.
func (s *Service) commitStock(ctx context.Context, order Order) error {
	applied := make([]OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		_, _, err := s.catalog.AdjustQuantity(ctx, catalog.AdjustmentInput{
			ProductID: line.ProductID,
			Delta:     -line.Quantity,
			Reason:    catalog.ReasonOrderCommit,
		})
		if err != nil {
			for _, done := range applied {
				if _, _, rbErr := s.catalog.AdjustQuantity(ctx, catalog.AdjustmentInput{
					ProductID: done.ProductID,
					Delta:     done.Quantity,
					Reason:    catalog.ReasonAdjustment,
				}); rbErr != nil && s.logger != nil {
					s.logger.Error("restore stock after failed commitment",
						slog.String("order_id", order.ID),
						slog.String("product_id", done.ProductID),
						slog.Any("error", rbErr))
				}
			}
			return err
		}
		applied = append(applied, line)
	}
	return nil
}

func (s *Service) resolveLines(ctx context.Context, inputs []OrderLineInput) ([]OrderLine, float64, error) {
	lines := make([]OrderLine, 0, len(inputs))
	total := 0.0
	for i, in := range inputs {
		if in.Quantity <= 0 {
			return nil, 0, shared.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "quantity must be positive")
		}
		product, err := s.catalog.Get(ctx, in.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("resolve product %s: %w", in.ProductID, err)
		}
		lines = append(lines, OrderLine{
			ProductID: product.ID,
			Label:     product.Name,
			Quantity:  in.Quantity,
			UnitPrice: product.Price,
		})
		total += float64(in.Quantity) * product.Price
	}
	return lines, total, nil
}
