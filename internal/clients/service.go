package clients

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/authz"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// ReferenceCheck reports whether any order or quote still references the
// client. Both backends consult it so delete semantics stay identical.
type ReferenceCheck func(ctx context.Context, clientID string) (bool, error)

// Service coordinates client operations. Reseller identities are scoped
// to their own rows on every call: listing is filtered, and a get/update/
// delete on someone else's row behaves exactly like a missing row.
type Service struct {
	repo Repository
	refs ReferenceCheck
}

// NewService builds Service. A nil reference check skips the
// referenced-rows guard on delete.
func NewService(repo Repository, refs ReferenceCheck) *Service {
	return &Service{repo: repo, refs: refs}
}

// List returns clients visible to the caller, newest first.
func (s *Service) List(ctx context.Context, identity auth.Identity, filters ClientFilters) ([]Client, error) {
	if scope := authz.ResellerScope(identity); scope != nil {
		filters.ResellerID = scope
	}
	return s.repo.List(ctx, filters)
}

// Get returns the client or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id string) (Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if scope := authz.ResellerScope(identity); scope != nil && client.ResellerID != *scope {
		return Client{}, shared.ErrNotFound
	}
	return client, nil
}

// Create validates the input and persists a new client owned by the
// calling reseller (or by input.ResellerID for manager/administrator).
func (s *Service) Create(ctx context.Context, identity auth.Identity, input CreateClientInput) (Client, error) {
	owner := input.ResellerID
	if scope := authz.ResellerScope(identity); scope != nil {
		owner = *scope
	}
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if owner == "" {
		fields["reseller_id"] = "owning reseller is required"
	}
	if len(fields) > 0 {
		return Client{}, &shared.ValidationError{Fields: fields}
	}

	now := time.Now().UTC()
	client := Client{
		ID:         uuid.NewString(),
		ResellerID: owner,
		Name:       strings.TrimSpace(input.Name),
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.repo.Create(ctx, client)
}

// Update applies the partial input to an existing client.
func (s *Service) Update(ctx context.Context, identity auth.Identity, input UpdateClientInput) (Client, error) {
	existing, err := s.Get(ctx, identity, input.ID)
	if err != nil {
		return Client{}, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Client{}, shared.NewValidationError("name", "name is required")
		}
		existing.Name = name
	}
	if input.Email != nil {
		existing.Email = input.Email
	}
	if input.Phone != nil {
		existing.Phone = input.Phone
	}
	if input.Address != nil {
		existing.Address = input.Address
	}
	existing.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, existing)
}

// Exists reports whether the client is visible to the caller.
func (s *Service) Exists(ctx context.Context, identity auth.Identity, id string) error {
	_, err := s.Get(ctx, identity, id)
	return err
}

// Delete removes the client. Clients still referenced by orders or
// quotes are kept; deleting twice is an error the second time.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if _, err := s.Get(ctx, identity, id); err != nil {
		return err
	}
	if s.refs != nil {
		referenced, err := s.refs(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return shared.NewValidationError("id", "client is referenced by orders or quotes and cannot be deleted")
		}
	}
	return s.repo.Delete(ctx, id)
}
