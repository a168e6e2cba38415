package stats

import "context"

// Repository computes the dashboard aggregates for one backend.
type Repository interface {
	Dashboard(ctx context.Context, filters Filters) (Dashboard, error)
}
