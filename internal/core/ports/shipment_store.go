package ports

import (
	"context"
	"time"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
)

// UpdateResult classifies the outcome of a conditional status update.
type UpdateResult int

const (
	// Updated means the stored status differed and the record was rewritten.
	Updated UpdateResult = iota
	// Unchanged means the record exists and already carries the new status.
	Unchanged
	// NotFound means no record matches the tracking number. Not an error:
	// it is logged as a data-quality signal and skipped.
	NotFound
)

// ActivityWindow carries the provider-reported activity timestamps applied
// alongside a status update.
type ActivityWindow struct {
	First time.Time
	Last  time.Time
}

// UpdateOutcome is returned by UpdateIfChanged. OldStatus is only meaningful
// when Result is Updated.
type UpdateOutcome struct {
	Result    UpdateResult
	OldStatus domain.Status
	Shipment  *domain.Shipment // state before the update, nil unless Updated
}

// ShipmentStore defines persistence operations used by the reconciliation
// engine and the inbound status webhook.
type ShipmentStore interface {
	// LoadOpen returns all shipments whose status is not terminal and that
	// are not cancelled. Ordering is unspecified.
	LoadOpen(ctx context.Context) ([]*domain.Shipment, error)

	// UpdateIfChanged applies newStatus to the record identified by
	// trackingNumber as a single conditional write: the update only lands
	// when the stored status differs. The picking timestamp is set from
	// activity.First only when newStatus is the canonical picked status and
	// no picking timestamp exists yet; it is never overwritten.
	UpdateIfChanged(ctx context.Context, trackingNumber string, newStatus domain.Status, activity ActivityWindow) (UpdateOutcome, error)
}
