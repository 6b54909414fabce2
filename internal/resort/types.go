package resort

import "time"

// SeasonStatus tracks where a resort is in its operating season.
type SeasonStatus string

const (
	SeasonOpen        SeasonStatus = "OPEN"
	SeasonClosed      SeasonStatus = "CLOSED"
	SeasonClosingSoon SeasonStatus = "CLOSING_SOON"
)

// Coordinate is a WGS84 lat/lon pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HoursRange is an opening window in "HH:MM" wall-clock form.
type HoursRange struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OperatingHours holds per-day-category opening windows.
type OperatingHours struct {
	Weekday HoursRange `json:"weekday"`
	Weekend HoursRange `json:"weekend"`
}

// Resort is a rankable destination. Entries from the curated catalog have
// Mapped=true; entries synthesized for unrecognized collector names have
// Mapped=false and default metadata.
type Resort struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Coord        Coordinate      `json:"coord"`
	SeasonStatus SeasonStatus    `json:"season_status"`
	OpeningDate  *time.Time      `json:"opening_date,omitempty"`
	ClosingDate  *time.Time      `json:"closing_date,omitempty"`
	Hours        *OperatingHours `json:"hours,omitempty"`
	Priority     int             `json:"priority"`
	Difficulty   string          `json:"difficulty"`
	HasPark      bool            `json:"has_park"`
	HasNightSki  bool            `json:"has_night_ski"`
	Mapped       bool            `json:"mapped"`
}

// ConditionRecord is a timestamped snapshot of perishable measurements for
// one resort. Missing measurements are nil, never zero — zero is a real
// observation. A newer record for the same resort replaces the old one
// wholesale; fields are never merged across records.
type ConditionRecord struct {
	ResortID         string    `json:"resort_id"`
	BaseDepthCM      *int      `json:"base_depth_cm,omitempty"`
	SecondaryDepthCM *int      `json:"secondary_depth_cm,omitempty"`
	NewSnowCM        *int      `json:"new_snow_cm,omitempty"`
	LiftsOpen        *int      `json:"lifts_open,omitempty"`
	LiftsTotal       *int      `json:"lifts_total,omitempty"`
	ObservedAt       time.Time `json:"observed_at"`
}

// TravelEstimate is the cached cost of reaching a resort from a fixed
// origin, produced either by the routing service or by the geometric
// fallback. Both paths are persisted identically.
type TravelEstimate struct {
	ResortID   string    `json:"resort_id"`
	Origin     string    `json:"origin"`
	DistanceKM float64   `json:"distance_km"`
	Minutes    int       `json:"minutes"`
	CachedAt   time.Time `json:"cached_at"`
}

// Status is the result of scoring a resort for today.
type Status string

const (
	StatusOpen        Status = "OPEN"
	StatusClosed      Status = "CLOSED"
	StatusClosedToday Status = "CLOSED_TODAY"
)

// ScoreResult is a derived value, recomputed on every run.
// Score is meaningful only when Status is OPEN; it is forced to 0 otherwise.
type ScoreResult struct {
	Status Status  `json:"status"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
