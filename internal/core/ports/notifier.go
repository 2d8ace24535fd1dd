package ports

import (
	"context"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
)

// Notifier delivers a status-change notification to the outbound sink.
// Delivery failures are the caller's to log; they never roll back the
// status update that produced the event.
type Notifier interface {
	Send(ctx context.Context, event domain.StatusChangeEvent) error
}

// EventDispatcher is the fire-and-forget queue between the reconciliation
// engine and the notifier.
type EventDispatcher interface {
	Enqueue(event domain.StatusChangeEvent)
}
