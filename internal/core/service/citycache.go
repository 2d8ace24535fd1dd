package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

// UnknownCity is served when the directory has no entry for a code or the
// directory could not be fetched at all. City names are cosmetic (they only
// appear in notification bodies), so resolution must never block a pass.
const UnknownCity = "Unknown City"

const defaultCityTTL = 24 * time.Hour

// CityCache maps provider city codes to display names. The directory is
// refreshed lazily at most once per reconciliation pass and retained up to
// ttl; a failed refresh keeps serving the previous snapshot.
type CityCache struct {
	provider ports.TrackingProvider
	ttl      time.Duration
	log      zerolog.Logger

	mu        sync.Mutex
	names     map[int]string
	fetchedAt time.Time
}

// NewCityCache creates a CityCache. A ttl <= 0 falls back to 24 hours, the
// longest staleness the directory is allowed to reach.
func NewCityCache(provider ports.TrackingProvider, ttl time.Duration, log zerolog.Logger) *CityCache {
	if ttl <= 0 || ttl > defaultCityTTL {
		ttl = defaultCityTTL
	}
	return &CityCache{provider: provider, ttl: ttl, log: log}
}

// Refresh fetches the city directory when the held snapshot is missing or
// older than ttl. Failure is non-fatal: the previous snapshot (if any) keeps
// serving and lookups otherwise resolve to UnknownCity.
func (c *CityCache) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.names != nil && time.Since(c.fetchedAt) < c.ttl {
		return
	}

	cities, err := c.provider.ListCities(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("city directory refresh failed, keeping previous snapshot")
		return
	}

	names := make(map[int]string, len(cities))
	for _, city := range cities {
		names[city.Code] = city.Name
	}
	c.names = names
	c.fetchedAt = time.Now()
	c.log.Debug().Int("cities", len(names)).Msg("city directory refreshed")
}

// Resolve returns the display name for code, or UnknownCity.
func (c *CityCache) Resolve(code int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name, ok := c.names[code]; ok && name != "" {
		return name
	}
	return UnknownCity
}
