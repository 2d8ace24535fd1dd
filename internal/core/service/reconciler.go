package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/api/metrics"
	"github.com/zebtan/courier-backoffice/internal/core/domain"
	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

// ReconciliationEngine runs the periodic shipment status reconciliation
// pass: load the open set, fetch the provider's snapshots in one bulk call,
// diff against stored state, apply conditional updates, and emit one
// notification per genuine transition.
type ReconciliationEngine struct {
	store      ports.ShipmentStore
	provider   ports.TrackingProvider
	cities     *CityCache
	dispatcher ports.EventDispatcher
	log        zerolog.Logger
}

func NewReconciliationEngine(
	store ports.ShipmentStore,
	provider ports.TrackingProvider,
	cities *CityCache,
	dispatcher ports.EventDispatcher,
	log zerolog.Logger,
) *ReconciliationEngine {
	return &ReconciliationEngine{
		store:      store,
		provider:   provider,
		cities:     cities,
		dispatcher: dispatcher,
		log:        log,
	}
}

// RunPass executes one reconciliation pass. A collect or fetch failure
// aborts the pass before any record is touched; per-record failures during
// diff/apply are isolated and counted in the summary. Re-running with
// unchanged remote data produces zero writes and zero notifications.
func (e *ReconciliationEngine) RunPass(ctx context.Context) (ports.PassSummary, error) {
	started := time.Now()
	var summary ports.PassSummary

	open, err := e.store.LoadOpen(ctx)
	if err != nil {
		metrics.PassesTotal.WithLabelValues("aborted").Inc()
		summary.Err = err.Error()
		e.log.Error().Err(err).Msg("pass aborted: loading open shipments failed")
		return summary, fmt.Errorf("load open shipments: %w", err)
	}
	summary.Open = len(open)
	if len(open) == 0 {
		metrics.PassesTotal.WithLabelValues("skipped").Inc()
		e.log.Debug().Msg("no open shipments, pass skipped")
		return summary, nil
	}

	// City names are cosmetic; a failed refresh degrades lookups to
	// UnknownCity instead of blocking status updates.
	e.cities.Refresh(ctx)

	byTrack := make(map[string]*domain.Shipment, len(open))
	numbers := make([]string, 0, len(open))
	for _, s := range open {
		tn := strings.TrimSpace(s.TrackingNumber)
		if tn == "" {
			continue // not booked with the courier yet
		}
		if _, dup := byTrack[tn]; dup {
			continue
		}
		byTrack[tn] = s
		numbers = append(numbers, tn)
	}
	if len(numbers) == 0 {
		metrics.PassesTotal.WithLabelValues("skipped").Inc()
		return summary, nil
	}

	snapshots, err := e.provider.TrackBatch(ctx, numbers)
	if err != nil {
		metrics.PassesTotal.WithLabelValues("aborted").Inc()
		summary.Err = err.Error()
		e.log.Error().Err(err).Int("batch_size", len(numbers)).Msg("pass aborted: tracking fetch failed")
		return summary, fmt.Errorf("track batch: %w", err)
	}

	for _, snap := range snapshots {
		// Cancellation point between iterations; abandoning here is safe
		// because every applied update is already final.
		if err := ctx.Err(); err != nil {
			summary.Err = err.Error()
			metrics.PassesTotal.WithLabelValues("aborted").Inc()
			e.log.Warn().Err(err).Msg("pass cancelled mid-diff")
			return summary, err
		}
		e.reconcileOne(ctx, snap, byTrack, &summary)
	}

	metrics.PassesTotal.WithLabelValues("ok").Inc()
	metrics.PassDuration.Observe(time.Since(started).Seconds())
	e.log.Info().
		Int("open", summary.Open).
		Int("updated", summary.Updated).
		Int("unchanged", summary.Unchanged).
		Int("unknown", summary.Unknown).
		Int("failed", summary.Failed).
		Dur("took", time.Since(started)).
		Msg("reconciliation pass complete")
	return summary, nil
}

// reconcileOne diffs a single snapshot against local state and applies the
// update/notify sequence. All failures here are per-record and isolated.
func (e *ReconciliationEngine) reconcileOne(
	ctx context.Context,
	snap domain.TrackingSnapshot,
	byTrack map[string]*domain.Shipment,
	summary *ports.PassSummary,
) {
	local, ok := byTrack[snap.TrackingNumber]
	if !ok {
		// Provider knows a packet the store does not. Never create records
		// here; booking owns creation.
		summary.Unknown++
		metrics.UnknownTrackingTotal.Inc()
		e.log.Warn().Str("tracking_number", snap.TrackingNumber).Msg("unknown tracking number in response")
		return
	}

	if local.Status == snap.Status {
		summary.Unchanged++
		return
	}

	outcome, err := e.store.UpdateIfChanged(ctx, snap.TrackingNumber, snap.Status, ports.ActivityWindow{
		First: snap.FirstActivity,
		Last:  snap.LastActivity,
	})
	if err != nil {
		summary.Failed++
		e.log.Error().Err(err).Str("tracking_number", snap.TrackingNumber).Msg("status update failed")
		return
	}

	switch outcome.Result {
	case ports.Unchanged:
		// Another writer (webhook) applied the same status first.
		summary.Unchanged++
	case ports.NotFound:
		summary.Unknown++
		e.log.Warn().Str("tracking_number", snap.TrackingNumber).Msg("shipment disappeared during pass")
	case ports.Updated:
		summary.Updated++
		metrics.ShipmentsUpdatedTotal.WithLabelValues(string(snap.Status)).Inc()
		e.dispatcher.Enqueue(e.buildEvent(outcome, snap))
		summary.Notified++
		e.log.Info().
			Str("tracking_number", snap.TrackingNumber).
			Str("old_status", string(outcome.OldStatus)).
			Str("new_status", string(snap.Status)).
			Msg("shipment status reconciled")
	}
}

// ApplyExternal applies a status reported by an external writer (the inbound
// provider webhook) through the same conditional-update path as a pass,
// emitting a notification when a genuine transition lands. Safe to interleave
// with a running pass: the store's conditional write makes the loser of the
// race a no-op.
func (e *ReconciliationEngine) ApplyExternal(
	ctx context.Context,
	trackingNumber string,
	status domain.Status,
	activity ports.ActivityWindow,
) (ports.UpdateOutcome, error) {
	outcome, err := e.store.UpdateIfChanged(ctx, trackingNumber, status, activity)
	if err != nil {
		return outcome, fmt.Errorf("apply external status: %w", err)
	}
	if outcome.Result == ports.Updated {
		metrics.ShipmentsUpdatedTotal.WithLabelValues(string(status)).Inc()
		e.cities.Refresh(ctx)
		e.dispatcher.Enqueue(e.buildEvent(outcome, domain.TrackingSnapshot{
			TrackingNumber: trackingNumber,
			Status:         status,
			FirstActivity:  activity.First,
			LastActivity:   activity.Last,
		}))
		e.log.Info().
			Str("tracking_number", trackingNumber).
			Str("old_status", string(outcome.OldStatus)).
			Str("new_status", string(status)).
			Msg("webhook status applied")
	}
	return outcome, nil
}

// buildEvent assembles the notification payload from the pre-update record
// and the snapshot that changed it.
func (e *ReconciliationEngine) buildEvent(outcome ports.UpdateOutcome, snap domain.TrackingSnapshot) domain.StatusChangeEvent {
	prior := outcome.Shipment

	pickup := prior.PickingTime
	if pickup == nil && snap.Status == domain.StatusPicked && !snap.FirstActivity.IsZero() {
		t := snap.FirstActivity
		pickup = &t
	}

	return domain.StatusChangeEvent{
		TrackingNumber: snap.TrackingNumber,
		OrderID:        prior.OrderID,
		OldStatus:      outcome.OldStatus,
		NewStatus:      snap.Status,
		ConsigneeName:  prior.ConsigneeName,
		CODAmount:      prior.CODAmount,
		PickupDate:     pickup,
		CityName:       e.cities.Resolve(prior.DestinationCity),
	}
}
