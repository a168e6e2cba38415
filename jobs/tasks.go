package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/comptoir-erp/comptoir-erp/internal/invoices"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
	// TaskStaleDraftSweep reports quotes left in brouillon past the
	// retention window.
	TaskStaleDraftSweep = "maintenance:stale_draft_sweep"
)

// IdempotencyCleanupPayload bounds the retention sweep.
type IdempotencyCleanupPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask(olderThan time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// NewIdempotencyCleanupHandler returns the handler bound to the store.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.OlderThan <= 0 {
			payload.OlderThan = 24 * time.Hour
		}
		if err := store.Cleanup(ctx, payload.OlderThan); err != nil {
			logger.Error("idempotency cleanup", slog.Any("error", err))
			return err
		}
		logger.Info("idempotency cleanup done", slog.Duration("older_than", payload.OlderThan))
		return nil
	}
}

// StaleDraftPayload bounds the draft sweep.
type StaleDraftPayload struct {
	MaxAge time.Duration `json:"max_age"`
}

// NewStaleDraftSweepTask constructs the sweep task.
func NewStaleDraftSweepTask(maxAge time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(StaleDraftPayload{MaxAge: maxAge})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStaleDraftSweep, data), nil
}

// NewStaleDraftSweepHandler reports brouillon quotes older than the
// window so resellers can be chased. It mutates nothing.
func NewStaleDraftSweepHandler(repo invoices.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload StaleDraftPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.MaxAge <= 0 {
			payload.MaxAge = 30 * 24 * time.Hour
		}
		draft := invoices.InvoiceStatusDraft
		list, err := repo.List(ctx, invoices.InvoiceFilters{Status: &draft})
		if err != nil {
			logger.Error("stale draft sweep", slog.Any("error", err))
			return err
		}
		cutoff := time.Now().UTC().Add(-payload.MaxAge)
		stale := 0
		for _, inv := range list {
			if inv.UpdatedAt.Before(cutoff) {
				stale++
				logger.Warn("stale draft quote",
					slog.String("invoice_id", inv.ID),
					slog.String("reseller_id", inv.ResellerID),
					slog.Time("updated_at", inv.UpdatedAt))
			}
		}
		logger.Info("stale draft sweep done", slog.Int("drafts", len(list)), slog.Int("stale", stale))
		return nil
	}
}
