package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/yukeru/gelande/internal/resort"
)

// Registry is the catalog of curated resorts. Entries are loaded once at
// construction; the only runtime mutation is the season-status feedback
// from the collector, guarded by the mutex so concurrent ingest batches
// never race on the same entry.
type Registry struct {
	mu      sync.RWMutex
	resorts map[string]resort.Resort
}

// New builds a Registry from the given entries. Later entries with a
// duplicate ID overwrite earlier ones.
func New(entries []resort.Resort) *Registry {
	m := make(map[string]resort.Resort, len(entries))
	for _, e := range entries {
		e.Mapped = true
		m[e.ID] = e
	}
	return &Registry{resorts: m}
}

// NewFromCatalog builds a Registry seeded with the built-in catalog.
func NewFromCatalog() *Registry {
	return New(Catalog())
}

// Get returns the entry for id. The second result is false when the id is
// not in the catalog.
func (r *Registry) Get(id string) (resort.Resort, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.resorts[id]
	return e, ok
}

// List returns all entries sorted by ID for deterministic iteration.
func (r *Registry) List() []resort.Resort {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]resort.Resort, 0, len(r.resorts))
	for _, e := range r.resorts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateSeasonStatus sets the season status (and, when non-nil, the opening
// date) for id. Unknown ids are ignored: synthesized resorts live outside
// the catalog and carry their status on the fly.
func (r *Registry) UpdateSeasonStatus(id string, status resort.SeasonStatus, openingDate *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.resorts[id]
	if !ok {
		return
	}
	e.SeasonStatus = status
	if openingDate != nil {
		e.OpeningDate = openingDate
	}
	r.resorts[id] = e
}
