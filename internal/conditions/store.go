package conditions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yukeru/gelande/internal/resort"
)

// freshnessWindow is how long an observation stays usable. A record older
// than this behaves as if it were never collected: stale-but-present data
// would silently inflate scores for resorts that may have since closed.
const freshnessWindow = 24 * time.Hour

const keyPrefix = "conditions:"

// Store holds the latest observed conditions per resort in Redis. Upsert
// replaces the whole record ("latest wins"); the Redis TTL enforces the
// freshness window, with an ObservedAt check on read for records that were
// already old when written.
type Store struct {
	client *redis.Client
	window time.Duration
	now    func() time.Time
}

// NewStore constructs a Store with the 24-hour freshness window.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, window: freshnessWindow, now: time.Now}
}

// NewStoreWithClock constructs a Store with an injectable clock (for tests).
func NewStoreWithClock(client *redis.Client, now func() time.Time) *Store {
	return &Store{client: client, window: freshnessWindow, now: now}
}

func key(resortID string) string {
	return keyPrefix + resortID
}

// Upsert stores rec as the current record for its resort, replacing any
// previous record wholesale. The entry expires when the observation leaves
// the freshness window.
func (s *Store) Upsert(ctx context.Context, rec resort.ConditionRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling conditions for %s: %w", rec.ResortID, err)
	}

	ttl := s.window - s.now().Sub(rec.ObservedAt)
	if ttl <= 0 {
		// Already outside the window; storing it would be indistinguishable
		// from absence anyway.
		return nil
	}

	if err := s.client.Set(ctx, key(rec.ResortID), b, ttl).Err(); err != nil {
		return fmt.Errorf("storing conditions for %s: %w", rec.ResortID, err)
	}
	return nil
}

// Latest returns the current record for resortID.
// Returns nil, nil when no fresh record exists (miss and expiry look alike).
func (s *Store) Latest(ctx context.Context, resortID string) (*resort.ConditionRecord, error) {
	val, err := s.client.Get(ctx, key(resortID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading conditions for %s: %w", resortID, err)
	}

	var rec resort.ConditionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling conditions for %s: %w", resortID, err)
	}

	if s.now().Sub(rec.ObservedAt) > s.window {
		return nil, nil
	}
	return &rec, nil
}

// LatestAll returns every fresh record keyed by resort identity.
func (s *Store) LatestAll(ctx context.Context) (map[string]resort.ConditionRecord, error) {
	out := make(map[string]resort.ConditionRecord)

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		val, err := s.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and get
			}
			return nil, fmt.Errorf("reading conditions key %s: %w", iter.Val(), err)
		}

		var rec resort.ConditionRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling conditions key %s: %w", iter.Val(), err)
		}
		if s.now().Sub(rec.ObservedAt) > s.window {
			continue
		}
		out[rec.ResortID] = rec
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning conditions keys: %w", err)
	}

	return out, nil
}
