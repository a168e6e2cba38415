// Package realtime carries entity-change notifications to page observers.
// The domain contracts never publish themselves; the request-handler layer
// publishes after a successful write so other viewers of the same row can
// refresh.
package realtime

import (
	"context"
	"time"
)

// Op enumerates the change kinds observers care about.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one changed row.
type Event struct {
	Table string    `json:"table"`
	ID    string    `json:"id"`
	Op    Op        `json:"op"`
	At    time.Time `json:"at"`
}

// Notifier publishes change events to out-of-band observers.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event. Used when no realtime transport is configured.
type Noop struct{}

// Publish implements Notifier.
func (Noop) Publish(context.Context, Event) error { return nil }
