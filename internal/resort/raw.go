package resort

import (
	"strconv"
	"strings"
	"time"
)

// RawRecord is one scraped row as the collector hands it over: a free-text
// resort name, measurement fields as strings (source sites use "-", "--" or
// empty cells when a figure is unpublished), and an absolute observation
// timestamp. The collector resolves relative dates before pushing.
type RawRecord struct {
	Name           string    `json:"name"`
	BaseDepth      string    `json:"base_depth"`
	SecondaryDepth string    `json:"secondary_depth"`
	NewSnow        string    `json:"new_snow"`
	LiftsOpen      string    `json:"lifts_open"`
	LiftsTotal     string    `json:"lifts_total"`
	ObservedAt     time.Time `json:"observed_at"`
}

// Conditions converts the raw row into a ConditionRecord for the given
// resolved resort identity. A field that cannot be parsed as a number is
// treated as absent; the record itself is always accepted.
func (r RawRecord) Conditions(resortID string) ConditionRecord {
	return ConditionRecord{
		ResortID:         resortID,
		BaseDepthCM:      parseMeasurement(r.BaseDepth),
		SecondaryDepthCM: parseMeasurement(r.SecondaryDepth),
		NewSnowCM:        parseMeasurement(r.NewSnow),
		LiftsOpen:        parseMeasurement(r.LiftsOpen),
		LiftsTotal:       parseMeasurement(r.LiftsTotal),
		ObservedAt:       r.ObservedAt,
	}
}

// parseMeasurement parses a scraped numeric cell. Unit suffixes are
// stripped; sentinel and malformed values come back as nil.
func parseMeasurement(s string) *int {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "cm")
	s = strings.TrimSuffix(s, "本")
	s = strings.TrimSpace(s)

	switch s {
	case "", "-", "--", "ー", "―", "n/a":
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
