package ports

import (
	"context"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
)

// TrackingProvider wraps the outbound courier tracking API. Implementations
// are pure I/O adapters: no retries beyond the transport layer's bounded
// policy, no state.
type TrackingProvider interface {
	// TrackBatch fetches the current snapshot for a set of tracking numbers
	// in one bulk request. Numbers the provider does not recognise are
	// simply absent from the result. Transport failures map to
	// domain.ErrProviderUnavailable; a payload-level failure flag maps to
	// domain.ErrProviderFailed.
	TrackBatch(ctx context.Context, trackingNumbers []string) ([]domain.TrackingSnapshot, error)

	// ListCities fetches the provider's city directory. Same error contract
	// as TrackBatch.
	ListCities(ctx context.Context) ([]domain.City, error)
}
