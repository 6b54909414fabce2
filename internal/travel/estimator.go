package travel

import (
	"context"
	"log/slog"
	"time"

	"github.com/yukeru/gelande/internal/resort"
)

// Origin is the fixed starting point for all estimates.
type Origin struct {
	Label string
	Coord resort.Coordinate
}

// Tokyo is the default origin.
var Tokyo = Origin{Label: "tokyo", Coord: resort.Coordinate{Lat: 35.6812, Lon: 139.7671}}

// estimateStore is the durable cache the estimator reads and writes.
// *storage.EstimateRepo satisfies this interface.
type estimateStore interface {
	Get(ctx context.Context, resortID, origin string) (*resort.TravelEstimate, error)
	Put(ctx context.Context, est resort.TravelEstimate) error
}

// routeFetcher is the external routing call. *RouterClient satisfies this
// interface.
type routeFetcher interface {
	Route(ctx context.Context, origin, dest resort.Coordinate) (distanceKM float64, minutes int, err error)
}

// Estimator resolves travel cost in three tiers: durable cache, live
// routing call, geometric fallback. The fallback is persisted exactly like
// a live result, so a transient outage is paid for at most once per TTL.
type Estimator struct {
	store  estimateStore
	router routeFetcher
	origin Origin
	log    *slog.Logger
	now    func() time.Time
}

// NewEstimator constructs an Estimator.
func NewEstimator(store estimateStore, router routeFetcher, origin Origin, log *slog.Logger) *Estimator {
	return &Estimator{store: store, router: router, origin: origin, log: log, now: time.Now}
}

// Estimate returns the travel cost from the fixed origin to r. It never
// fails on routing problems — cache errors are the only error path, and
// even a broken cache degrades to computing without persisting.
func (e *Estimator) Estimate(ctx context.Context, r resort.Resort) (resort.TravelEstimate, error) {
	cached, err := e.store.Get(ctx, r.ID, e.origin.Label)
	if err != nil {
		e.log.Warn("travel cache read failed", "resort", r.ID, "err", err)
	}
	if cached != nil {
		return *cached, nil
	}

	est := resort.TravelEstimate{
		ResortID: r.ID,
		Origin:   e.origin.Label,
		CachedAt: e.now(),
	}

	dist, minutes, err := e.router.Route(ctx, e.origin.Coord, r.Coord)
	if err != nil {
		// Timeouts, auth failures, malformed payloads and missing
		// credentials all land here; the caller never sees them.
		e.log.Warn("routing call failed, using geometric fallback", "resort", r.ID, "err", err)
		dist, minutes = fallbackEstimate(r.ID, e.origin.Coord, r.Coord)
	}
	est.DistanceKM = dist
	est.Minutes = minutes

	if err := e.store.Put(ctx, est); err != nil {
		e.log.Warn("travel cache write failed", "resort", r.ID, "err", err)
	}
	return est, nil
}
