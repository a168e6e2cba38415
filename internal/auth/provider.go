package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Provider resolves the current authenticated identity. Session and token
// handling live upstream; the provider only maps an opaque user id to a
// profile row.
type Provider interface {
	Resolve(ctx context.Context, userID string) (Identity, error)
}

// ProfileProvider resolves identities against the profiles table.
type ProfileProvider struct {
	pool *pgxpool.Pool
}

// NewProfileProvider constructs a ProfileProvider.
func NewProfileProvider(pool *pgxpool.Pool) *ProfileProvider {
	return &ProfileProvider{pool: pool}
}

// Resolve loads the profile for the given user id.
func (p *ProfileProvider) Resolve(ctx context.Context, userID string) (Identity, error) {
	if userID == "" {
		return Identity{}, ErrNoIdentity
	}
	const query = `SELECT id, role, display_name FROM profiles WHERE id = $1`
	var id Identity
	err := p.pool.QueryRow(ctx, query, userID).Scan(&id.ID, &id.Role, &id.DisplayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrNoIdentity
		}
		return Identity{}, fmt.Errorf("auth: resolve profile: %w", err)
	}
	if !id.Role.Valid() {
		return Identity{}, fmt.Errorf("auth: profile %s has unknown role %q", id.ID, id.Role)
	}
	return id, nil
}

// StaticProvider resolves identities from a fixed profile set. It backs the
// in-memory store mode and tests.
type StaticProvider struct {
	profiles map[string]Identity
}

// NewStaticProvider constructs a StaticProvider from explicit profiles.
func NewStaticProvider(profiles []Identity) *StaticProvider {
	m := make(map[string]Identity, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return &StaticProvider{profiles: m}
}

// Resolve looks up the identity by id.
func (p *StaticProvider) Resolve(_ context.Context, userID string) (Identity, error) {
	id, ok := p.profiles[userID]
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
