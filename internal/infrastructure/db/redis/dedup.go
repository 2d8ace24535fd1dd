package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// NotifyGuard suppresses duplicate status-change notifications. Two writers
// (the reconciliation pass and the inbound webhook) can apply the same
// transition near-simultaneously; the guard ensures at most one notification
// per (tracking number, status) within the TTL window.
// Key format: notify:<tracking_number>:<status>
type NotifyGuard struct {
	client *redis.Client
}

// NewNotifyGuard creates a NotifyGuard wrapping the given Redis client.
func NewNotifyGuard(client *redis.Client) *NotifyGuard {
	return &NotifyGuard{client: client}
}

// ShouldSend atomically claims the notification slot for this transition.
// It returns true exactly once per key within the TTL window.
func (g *NotifyGuard) ShouldSend(ctx context.Context, trackingNumber, status string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(trackingNumber, status), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("notify dedup: %w", err)
	}
	return ok, nil
}

func (g *NotifyGuard) key(trackingNumber, status string) string {
	return fmt.Sprintf("notify:%s:%s", trackingNumber, status)
}
