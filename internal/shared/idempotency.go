package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrIdempotencyConflict reports a key that has already been applied.
var ErrIdempotencyConflict = errors.New("idempotency key already applied")

// IdempotencyStore records applied mutation keys in Postgres so a retry
// after a dropped response can be recognised and discarded. The stock
// ledger is its main client: it namespaces the Idempotency-Key header as
// stock:<product>:<key> so the same header may legitimately adjust two
// different products.
//
// Methods tolerate a nil receiver so memory-backed deployments, which
// have no durable key table, can skip the wiring entirely.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// CheckAndInsert claims the key for the given module. The primary key on
// idempotency_keys makes the claim atomic: the second caller collides
// and gets ErrIdempotencyConflict.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if s == nil {
		return errors.New("idempotency store not configured")
	}
	if key == "" || module == "" {
		return errors.New("idempotency key and module are required")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO idempotency_keys (key, module, created_at) VALUES ($1, $2, $3)`,
		key, module, time.Now().UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrIdempotencyConflict
	}
	return err
}

// Delete releases a claimed key. The ledger calls it when the guarded
// adjustment fails, so a corrected retry with the same header is not
// mistaken for a duplicate.
func (s *IdempotencyStore) Delete(ctx context.Context, key string) error {
	if s == nil || key == "" {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
	return err
}

// Cleanup drops keys older than the retention window. Run periodically
// by the worker; keys only need to outlive plausible client retries.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE created_at < $1`,
		time.Now().UTC().Add(-olderThan))
	return err
}
