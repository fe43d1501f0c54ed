package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper claims event ids in Redis so a redelivered event that already
// committed is skipped instead of fanning out twice. The bulk path in the
// assignment factory has no per-row existence check, so this claim is its
// duplicate-delivery guard.
type Deduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDeduper constructs a Redis-backed event claim store.
func NewDeduper(client *redis.Client, prefix string, ttl time.Duration) *Deduper {
	if prefix == "" {
		prefix = "lingua:events"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Deduper{client: client, prefix: prefix, ttl: ttl}
}

// Claim marks the event id as being processed. It returns false when another
// delivery already holds or completed the claim.
func (d *Deduper) Claim(ctx context.Context, eventID string) (bool, error) {
	if d == nil || d.client == nil {
		return true, nil
	}

	ok, err := d.client.SetNX(ctx, d.key(eventID), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}

	return ok, nil
}

// Release drops the claim so a retry of a failed handler can run again.
func (d *Deduper) Release(ctx context.Context, eventID string) error {
	if d == nil || d.client == nil {
		return nil
	}

	if err := d.client.Del(ctx, d.key(eventID)).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}

	return nil
}

func (d *Deduper) key(eventID string) string {
	return d.prefix + ":" + eventID
}
