package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
)

func TestCityCache_ResolveBeforeRefresh(t *testing.T) {
	cache := NewCityCache(&stubProvider{}, time.Hour, zerolog.Nop())
	if got := cache.Resolve(42); got != UnknownCity {
		t.Errorf("expected %q before refresh, got %q", UnknownCity, got)
	}
}

func TestCityCache_RefreshThenResolve(t *testing.T) {
	provider := &stubProvider{cities: []domain.City{{Code: 42, Name: "Lahore"}, {Code: 7, Name: "Karachi"}}}
	cache := NewCityCache(provider, time.Hour, zerolog.Nop())

	cache.Refresh(context.Background())

	if got := cache.Resolve(42); got != "Lahore" {
		t.Errorf("expected Lahore, got %q", got)
	}
	if got := cache.Resolve(99); got != UnknownCity {
		t.Errorf("expected %q for unknown code, got %q", UnknownCity, got)
	}
}

func TestCityCache_RefreshOnceWithinTTL(t *testing.T) {
	provider := &stubProvider{cities: []domain.City{{Code: 42, Name: "Lahore"}}}
	cache := NewCityCache(provider, time.Hour, zerolog.Nop())

	cache.Refresh(context.Background())
	cache.Refresh(context.Background())
	cache.Refresh(context.Background())

	if provider.cityCalls != 1 {
		t.Errorf("expected a single provider call within the TTL, got %d", provider.cityCalls)
	}
}

func TestCityCache_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	provider := &stubProvider{cities: []domain.City{{Code: 42, Name: "Lahore"}}}
	cache := NewCityCache(provider, time.Millisecond, zerolog.Nop())

	cache.Refresh(context.Background())
	time.Sleep(2 * time.Millisecond) // let the snapshot expire

	provider.citiesErr = domain.ErrProviderUnavailable
	cache.Refresh(context.Background())

	if got := cache.Resolve(42); got != "Lahore" {
		t.Errorf("expected stale snapshot to keep serving, got %q", got)
	}
}

func TestCityCache_EmptyNameFallsBack(t *testing.T) {
	provider := &stubProvider{cities: []domain.City{{Code: 42, Name: ""}}}
	cache := NewCityCache(provider, time.Hour, zerolog.Nop())

	cache.Refresh(context.Background())

	if got := cache.Resolve(42); got != UnknownCity {
		t.Errorf("expected %q for empty name, got %q", UnknownCity, got)
	}
}
