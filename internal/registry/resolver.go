package registry

import (
	"regexp"
	"strings"

	"github.com/yukeru/gelande/internal/resort"
)

// Resolver maps free-text resort names from the collector onto catalog
// identities. Matching is exact first, then case-insensitive containment in
// either direction; names that match nothing get a synthesized identity so
// collected data is never dropped just because the catalog is incomplete.
//
// The lowercase index is built once from the registry; matching semantics
// define what counts as "mapped", so they stay a plain string comparison
// rather than a fuzzy-matching dependency.
type Resolver struct {
	registry *Registry
	index    []indexEntry
}

type indexEntry struct {
	id        string
	lowerName string
}

// NewResolver builds a Resolver over the registry's current entries.
func NewResolver(r *Registry) *Resolver {
	entries := r.List()
	idx := make([]indexEntry, 0, len(entries))
	for _, e := range entries {
		idx = append(idx, indexEntry{id: e.ID, lowerName: strings.ToLower(e.Name)})
	}
	return &Resolver{registry: r, index: idx}
}

// Resolve maps rawName to a catalog resort, or synthesizes a provisional
// one. cond supplies the lifts-open count that decides the synthesized
// season status; it may be nil.
func (rs *Resolver) Resolve(rawName string, cond *resort.ConditionRecord) resort.Resort {
	needle := strings.ToLower(strings.TrimSpace(rawName))

	for _, e := range rs.index {
		if e.lowerName == needle {
			r, _ := rs.registry.Get(e.id)
			return r
		}
	}
	for _, e := range rs.index {
		if strings.Contains(e.lowerName, needle) || strings.Contains(needle, e.lowerName) {
			r, _ := rs.registry.Get(e.id)
			return r
		}
	}

	return rs.synthesize(Slugify(rawName), strings.TrimSpace(rawName), cond)
}

// Lookup returns the catalog entry for an already-resolved identity, or a
// synthesized entry with the same defaults Resolve would produce.
func (rs *Resolver) Lookup(id string, cond *resort.ConditionRecord) resort.Resort {
	if r, ok := rs.registry.Get(id); ok {
		return r
	}
	return rs.synthesize(id, id, cond)
}

// synthesize builds a provisional resort for an unmapped name: neutral
// priority, mixed difficulty, default coordinates, and season status from
// the most recent lifts-open count (zero or unknown means closed).
func (rs *Resolver) synthesize(id, name string, cond *resort.ConditionRecord) resort.Resort {
	status := resort.SeasonClosed
	if cond != nil && cond.LiftsOpen != nil && *cond.LiftsOpen > 0 {
		status = resort.SeasonOpen
	}
	return resort.Resort{
		ID:           id,
		Name:         name,
		Coord:        defaultCoord,
		SeasonStatus: status,
		Priority:     5,
		Difficulty:   "mixed",
		Mapped:       false,
	}
}

// defaultCoord places unmapped resorts in the Minakami snow belt, the
// centroid of the sites the collector scrapes.
var defaultCoord = resort.Coordinate{Lat: 36.75, Lon: 138.95}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a free-text name into a stable identity: lowercase, runs of
// non-alphanumerics collapsed to a single hyphen, leading/trailing hyphens
// trimmed.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
