package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yukeru/gelande/internal/resort"
)

// estimateTTL is how long a persisted travel estimate stays servable.
// Road networks change rarely, so this is deliberately far longer than the
// condition freshness window.
const estimateTTL = 365 * 24 * time.Hour

// Querier abstracts the subset of pgxpool.Pool used by EstimateRepo.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EstimateRepo is the durable cache for travel estimates. Live routing
// results and geometric fallbacks are persisted through the same Put, so a
// transient routing outage never forces repeated fallback computation.
type EstimateRepo struct {
	q   Querier
	ttl time.Duration
	now func() time.Time
}

// NewEstimateRepo constructs an EstimateRepo backed by the given pool.
func NewEstimateRepo(pool *pgxpool.Pool) *EstimateRepo {
	return &EstimateRepo{q: pool, ttl: estimateTTL, now: time.Now}
}

// NewEstimateRepoWithQuerier constructs an EstimateRepo with a custom
// Querier and clock (for tests).
func NewEstimateRepoWithQuerier(q Querier, now func() time.Time) *EstimateRepo {
	return &EstimateRepo{q: q, ttl: estimateTTL, now: now}
}

// Get returns the cached estimate for (resortID, origin).
// Returns nil, nil when no row exists or the row has outlived its TTL —
// an expired estimate must behave exactly like a miss.
func (r *EstimateRepo) Get(ctx context.Context, resortID, origin string) (*resort.TravelEstimate, error) {
	const q = `
		SELECT resort_id, origin, distance_km, minutes, cached_at
		FROM travel_estimates
		WHERE resort_id = $1 AND origin = $2
	`

	var est resort.TravelEstimate
	err := r.q.QueryRow(ctx, q, resortID, origin).Scan(
		&est.ResortID,
		&est.Origin,
		&est.DistanceKM,
		&est.Minutes,
		&est.CachedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying travel estimate for %s from %s: %w", resortID, origin, err)
	}

	if r.now().Sub(est.CachedAt) > r.ttl {
		return nil, nil
	}
	return &est, nil
}

// Put inserts or replaces the estimate for its (resort, origin) pair.
func (r *EstimateRepo) Put(ctx context.Context, est resort.TravelEstimate) error {
	const q = `
		INSERT INTO travel_estimates (resort_id, origin, distance_km, minutes, cached_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (resort_id, origin) DO UPDATE
		SET distance_km = EXCLUDED.distance_km,
		    minutes     = EXCLUDED.minutes,
		    cached_at   = EXCLUDED.cached_at
	`

	if _, err := r.q.Exec(ctx, q, est.ResortID, est.Origin, est.DistanceKM, est.Minutes, est.CachedAt); err != nil {
		return fmt.Errorf("upserting travel estimate for %s from %s: %w", est.ResortID, est.Origin, err)
	}
	return nil
}
