// Package recommend orchestrates registry, condition store, travel
// estimator and scoring into a ranked, explainable recommendation.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yukeru/gelande/internal/resort"
	"github.com/yukeru/gelande/internal/scoring"
)

// estimateWorkers bounds concurrent travel estimation. Estimation is the
// pipeline's only suspension point; the bound exists for upstream rate
// limits, not correctness.
const estimateWorkers = 4

type conditionStore interface {
	Upsert(ctx context.Context, rec resort.ConditionRecord) error
	Latest(ctx context.Context, resortID string) (*resort.ConditionRecord, error)
	LatestAll(ctx context.Context) (map[string]resort.ConditionRecord, error)
}

type estimator interface {
	Estimate(ctx context.Context, r resort.Resort) (resort.TravelEstimate, error)
}

type identityResolver interface {
	Resolve(rawName string, cond *resort.ConditionRecord) resort.Resort
	Lookup(id string, cond *resort.ConditionRecord) resort.Resort
}

type catalog interface {
	List() []resort.Resort
	UpdateSeasonStatus(id string, status resort.SeasonStatus, openingDate *time.Time)
}

// Service is the recommendation pipeline.
type Service struct {
	registry   catalog
	resolver   identityResolver
	conditions conditionStore
	travel     estimator
	log        *slog.Logger
	now        func() time.Time
}

// NewService wires the pipeline together.
func NewService(registry catalog, resolver identityResolver, conditions conditionStore, travel estimator, log *slog.Logger) *Service {
	return &Service{
		registry:   registry,
		resolver:   resolver,
		conditions: conditions,
		travel:     travel,
		log:        log,
		now:        time.Now,
	}
}

// NewServiceWithClock is NewService with an injectable clock (for tests).
func NewServiceWithClock(registry catalog, resolver identityResolver, conditions conditionStore, travel estimator, log *slog.Logger, now func() time.Time) *Service {
	s := NewService(registry, resolver, conditions, travel, log)
	s.now = now
	return s
}

// Options narrows and truncates the recommendation result.
type Options struct {
	MaxTravelMinutes int
	MinScore         float64
	Limit            int
	IncludeClosed    bool
}

// DefaultOptions is a day trip: three hours of driving, anything scoring
// at least 10, top five.
func DefaultOptions() Options {
	return Options{MaxTravelMinutes: 180, MinScore: 10, Limit: 5}
}

// Item is one ranked recommendation.
type Item struct {
	ResortID      string              `json:"resort_id"`
	Name          string              `json:"name"`
	Score         float64             `json:"score"`
	Status        resort.Status       `json:"status"`
	Reason        string              `json:"reason"`
	SeasonStatus  resort.SeasonStatus `json:"season_status"`
	TravelMinutes int                 `json:"travel_minutes"`
	DistanceKM    float64             `json:"distance_km"`
	Mapped        bool                `json:"mapped"`
}

// Funnel records the survivor count at every filtering stage, so a caller
// can always explain an empty result.
type Funnel struct {
	TotalConsidered int `json:"total_considered"`
	PassedTravel    int `json:"passed_travel"`
	PassedSeason    int `json:"passed_season"`
	PassedScore     int `json:"passed_score"`
	Final           int `json:"final"`
}

// Result is the ranked items plus the funnel that produced them.
type Result struct {
	Items  []Item `json:"items"`
	Funnel Funnel `json:"funnel"`
}

type candidate struct {
	resort resort.Resort
	cond   resort.ConditionRecord
	est    resort.TravelEstimate
}

// Recommend runs the pipeline: enumerate resorts with fresh conditions,
// resolve each against the catalog, estimate travel, filter by travel
// budget, season and score, then rank. A resort never collected today is
// not recommendable, deliberately.
func (s *Service) Recommend(ctx context.Context, opts Options) (Result, error) {
	conds, err := s.conditions.LatestAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing current conditions: %w", err)
	}

	var funnel Funnel
	funnel.TotalConsidered = len(conds)

	resolved := make([]candidate, 0, len(conds))
	for id, cond := range conds {
		r := s.resolver.Lookup(id, &cond)
		resolved = append(resolved, candidate{resort: r, cond: cond})
	}

	// Travel estimation is the only suspension point; run it with bounded
	// concurrency and keep survivors of the travel budget.
	var mu sync.Mutex
	var passedTravel []candidate

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(estimateWorkers)
	for _, c := range resolved {
		c := c
		g.Go(func() error {
			est, err := s.travel.Estimate(gCtx, c.resort)
			if err != nil {
				return fmt.Errorf("estimating travel for %s: %w", c.resort.ID, err)
			}
			if est.Minutes > opts.MaxTravelMinutes {
				return nil
			}
			c.est = est
			mu.Lock()
			passedTravel = append(passedTravel, c)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	funnel.PassedTravel = len(passedTravel)

	passedSeason := make([]candidate, 0, len(passedTravel))
	for _, c := range passedTravel {
		if !opts.IncludeClosed && c.resort.SeasonStatus != resort.SeasonOpen {
			continue
		}
		passedSeason = append(passedSeason, c)
	}
	funnel.PassedSeason = len(passedSeason)

	type scored struct {
		item     Item
		priority int
	}

	now := s.now()
	ranked := make([]scored, 0, len(passedSeason))
	for _, c := range passedSeason {
		res := scoring.Score(c.resort, &c.cond, now)
		if res.Score < opts.MinScore {
			continue
		}
		ranked = append(ranked, scored{item: s.item(c.resort, res, c.est), priority: c.resort.Priority})
	}
	funnel.PassedScore = len(ranked)

	// Ties break by catalog priority, then by identity, so repeated runs
	// over identical data produce an identical order.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].item.Score != ranked[j].item.Score {
			return ranked[i].item.Score > ranked[j].item.Score
		}
		if ranked[i].priority != ranked[j].priority {
			return ranked[i].priority > ranked[j].priority
		}
		return ranked[i].item.ResortID < ranked[j].item.ResortID
	})
	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	funnel.Final = len(ranked)

	items := make([]Item, 0, len(ranked))
	for _, sc := range ranked {
		items = append(items, sc.item)
	}
	return Result{Items: items, Funnel: funnel}, nil
}

// ResortDetails returns the recommendation item for a single resort,
// whether or not it would survive the filters.
// Returns nil, nil when the id matches neither the catalog nor any
// collected data.
func (s *Service) ResortDetails(ctx context.Context, id string) (*Item, error) {
	cond, err := s.conditions.Latest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading conditions for %s: %w", id, err)
	}

	r := s.resolver.Lookup(id, cond)
	if !r.Mapped && cond == nil {
		return nil, nil
	}

	est, err := s.travel.Estimate(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("estimating travel for %s: %w", id, err)
	}

	res := scoring.Score(r, cond, s.now())
	item := s.item(r, res, est)
	return &item, nil
}

// ClosedResorts returns every catalog entry currently closed for the
// season, with opening dates where known.
func (s *Service) ClosedResorts(_ context.Context) []resort.Resort {
	var out []resort.Resort
	for _, r := range s.registry.List() {
		if r.SeasonStatus == resort.SeasonClosed {
			out = append(out, r)
		}
	}
	return out
}

// IngestSummary reports what happened to one collector batch.
type IngestSummary struct {
	Received    int `json:"received"`
	Stored      int `json:"stored"`
	Synthesized int `json:"synthesized"`
	Reopened    int `json:"reopened"`
}

// Ingest accepts a collector batch: resolve each raw name, store the
// parsed conditions (latest wins), and feed season status back to the
// catalog when a closed resort is observed running lifts. Store failures
// skip the record and carry on; a partial batch beats none.
func (s *Service) Ingest(ctx context.Context, records []resort.RawRecord) IngestSummary {
	summary := IngestSummary{Received: len(records)}

	for _, raw := range records {
		cond := raw.Conditions("")
		r := s.resolver.Resolve(raw.Name, &cond)
		cond.ResortID = r.ID

		if err := s.conditions.Upsert(ctx, cond); err != nil {
			s.log.Error("storing collected conditions failed", "resort", r.ID, "err", err)
			continue
		}
		summary.Stored++
		if !r.Mapped {
			summary.Synthesized++
			s.log.Info("synthesized identity for unmapped resort", "name", raw.Name, "resort", r.ID)
		}

		if r.Mapped && r.SeasonStatus != resort.SeasonOpen &&
			cond.LiftsOpen != nil && *cond.LiftsOpen > 0 {
			opened := cond.ObservedAt.Truncate(24 * time.Hour)
			s.registry.UpdateSeasonStatus(r.ID, resort.SeasonOpen, &opened)
			summary.Reopened++
			s.log.Info("season status fed back from collector", "resort", r.ID, "lifts_open", *cond.LiftsOpen)
		}
	}

	return summary
}

// item assembles the API shape for one scored resort.
func (s *Service) item(r resort.Resort, res resort.ScoreResult, est resort.TravelEstimate) Item {
	return Item{
		ResortID:      r.ID,
		Name:          r.Name,
		Score:         res.Score,
		Status:        res.Status,
		Reason:        res.Reason,
		SeasonStatus:  r.SeasonStatus,
		TravelMinutes: est.Minutes,
		DistanceKM:    est.DistanceKM,
		Mapped:        r.Mapped,
	}
}
