package clients

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

type memoryRepository struct {
	mu      sync.Mutex
	clients map[string]Client
}

// NewMemoryRepository builds an isolated in-memory repository seeded with
// the given rows.
func NewMemoryRepository(clients []Client) Repository {
	repo := &memoryRepository{clients: make(map[string]Client, len(clients))}
	for _, c := range clients {
		repo.clients[c.ID] = c
	}
	return repo
}

func (r *memoryRepository) List(_ context.Context, filters ClientFilters) ([]Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Client
	for _, c := range r.clients {
		if filters.ResellerID != nil && c.ResellerID != *filters.ResellerID {
			continue
		}
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			email := ""
			if c.Email != nil {
				email = strings.ToLower(*c.Email)
			}
			if !strings.Contains(strings.ToLower(c.Name), needle) && !strings.Contains(email, needle) {
				continue
			}
		}
		result = append(result, c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return Client{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) Create(_ context.Context, client Client) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[client.ID]; exists {
		return Client{}, shared.ErrDuplicate
	}
	r.clients[client.ID] = client
	return client, nil
}

func (r *memoryRepository) Update(_ context.Context, client Client) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.clients[client.ID]
	if !ok {
		return Client{}, shared.ErrNotFound
	}
	client.CreatedAt = existing.CreatedAt
	client.ResellerID = existing.ResellerID
	r.clients[client.ID] = client
	return client, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}
