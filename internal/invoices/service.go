package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/authz"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// ClientPort verifies that the invoice's client exists within the
// caller's scope.
type ClientPort interface {
	Exists(ctx context.Context, identity auth.Identity, clientID string) error
}

// Service coordinates invoice operations: reseller scoping, the decision
// workflow and the brouillon-only line-edit rule.
type Service struct {
	repo    Repository
	clients ClientPort
}

// NewService builds Service.
func NewService(repo Repository, clientPort ClientPort) *Service {
	return &Service{repo: repo, clients: clientPort}
}

// List returns invoices visible to the caller, newest first.
func (s *Service) List(ctx context.Context, identity auth.Identity, filters InvoiceFilters) ([]Invoice, error) {
	if scope := authz.ResellerScope(identity); scope != nil {
		filters.ResellerID = scope
	}
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", *filters.Status))
	}
	return s.repo.List(ctx, filters)
}

// Get returns the invoice or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id string) (Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if scope := authz.ResellerScope(identity); scope != nil && invoice.ResellerID != *scope {
		return Invoice{}, shared.ErrNotFound
	}
	return invoice, nil
}

// Create validates the input and persists a new brouillon quote with
// server-computed totals.
func (s *Service) Create(ctx context.Context, identity auth.Identity, input CreateInvoiceInput) (Invoice, error) {
	owner := input.ResellerID
	if scope := authz.ResellerScope(identity); scope != nil {
		owner = *scope
	}
	if owner == "" {
		return Invoice{}, shared.NewValidationError("reseller_id", "owning reseller is required")
	}
	if input.ClientID == "" {
		return Invoice{}, shared.NewValidationError("client_id", "client is required")
	}
	if err := validateLines(input.Lines); err != nil {
		return Invoice{}, err
	}
	if err := s.clients.Exists(ctx, identity, input.ClientID); err != nil {
		return Invoice{}, fmt.Errorf("verify client: %w", err)
	}

	subtotal, tax, total := ComputeTotals(input.Lines)
	now := time.Now().UTC()
	invoice := Invoice{
		ID:         uuid.NewString(),
		ResellerID: owner,
		ClientID:   input.ClientID,
		Status:     InvoiceStatusDraft,
		Lines:      input.Lines,
		Subtotal:   subtotal,
		TaxAmount:  tax,
		Total:      total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.repo.Create(ctx, invoice)
}

// Update applies the partial input. Line edits outside brouillon fail
// with shared.ErrInvalidState and change nothing.
func (s *Service) Update(ctx context.Context, identity auth.Identity, input UpdateInvoiceInput) (Invoice, error) {
	existing, err := s.Get(ctx, identity, input.ID)
	if err != nil {
		return Invoice{}, err
	}
	if input.Lines != nil && existing.Status != InvoiceStatusDraft {
		return Invoice{}, fmt.Errorf("%w: line items are frozen once the quote is %s", shared.ErrInvalidState, existing.Status)
	}
	if input.ClientID != nil {
		if existing.Status != InvoiceStatusDraft {
			return Invoice{}, fmt.Errorf("%w: quote is %s", shared.ErrInvalidState, existing.Status)
		}
		if err := s.clients.Exists(ctx, identity, *input.ClientID); err != nil {
			return Invoice{}, fmt.Errorf("verify client: %w", err)
		}
		existing.ClientID = *input.ClientID
	}
	if input.Lines != nil {
		if err := validateLines(*input.Lines); err != nil {
			return Invoice{}, err
		}
		existing.Lines = *input.Lines
		existing.Subtotal, existing.TaxAmount, existing.Total = ComputeTotals(*input.Lines)
	}
	existing.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, existing)
}

// Delete removes the invoice. Deleting twice is an error the second time.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if _, err := s.Get(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetStatus advances the invoice through the transition table. A reseller
// may only submit its own brouillon (→ en_attente); the decision states
// belong to managers and administrators. The status write is a
// compare-and-set against the status the caller observed, so concurrent
// validée/refusée decisions cannot both land.
func (s *Service) SetStatus(ctx context.Context, identity auth.Identity, id string, next InvoiceStatus) (Invoice, error) {
	if !next.Valid() {
		return Invoice{}, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", next))
	}
	if identity.IsReseller() && next != InvoiceStatusPending {
		return Invoice{}, shared.ErrUnauthorized
	}
	existing, err := s.Get(ctx, identity, id)
	if err != nil {
		return Invoice{}, err
	}
	if !existing.Status.CanTransitionTo(next) {
		return Invoice{}, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, existing.Status, next)
	}
	return s.repo.UpdateStatus(ctx, id, existing.Status, next)
}

func validateLines(lines []InvoiceLine) error {
	if len(lines) == 0 {
		return shared.NewValidationError("lines", "at least one line is required")
	}
	for i, line := range lines {
		if strings.TrimSpace(line.Description) == "" {
			return shared.NewValidationError(fmt.Sprintf("lines[%d].description", i), "description is required")
		}
		if line.Quantity <= 0 {
			return shared.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "quantity must be positive")
		}
		if line.UnitPrice < 0 {
			return shared.NewValidationError(fmt.Sprintf("lines[%d].unit_price", i), "unit price must not be negative")
		}
	}
	return nil
}
