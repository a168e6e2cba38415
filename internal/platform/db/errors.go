package db

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// Translate maps store-level failures onto the domain error taxonomy so
// that no pg-specific error shape leaks past the repository boundary.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.ErrDuplicate
		case "23503":
			// Fires both ways: inserting a reference to a missing row,
			// or deleting a row something still references.
			return shared.NewValidationError("id", "foreign key constraint violated")
		case "23514":
			return shared.NewValidationError("value", "constraint violated")
		}
		// Class 08 covers connection exceptions.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return shared.ErrBackendUnavailable
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return shared.ErrBackendUnavailable
	}
	return err
}
