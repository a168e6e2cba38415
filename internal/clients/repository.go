package clients

import "context"

// Repository is the backend contract for the client family.
type Repository interface {
	List(ctx context.Context, filters ClientFilters) ([]Client, error)
	Get(ctx context.Context, id string) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, client Client) (Client, error)
	Delete(ctx context.Context, id string) error
}
