package stats

import (
	"context"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/authz"
)

// Service applies reseller scoping before delegating to the backend
// aggregation.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Dashboard returns the aggregate snapshot visible to the caller.
func (s *Service) Dashboard(ctx context.Context, identity auth.Identity) (Dashboard, error) {
	filters := Filters{}
	if scope := authz.ResellerScope(identity); scope != nil {
		filters.ResellerID = scope
	}
	return s.repo.Dashboard(ctx, filters)
}
