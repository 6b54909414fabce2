// Package scoring turns a resort's merged state into a bounded score with
// a human-readable reason. Score is a pure function of resort, conditions
// and clock — no I/O, so every rule is trivially unit-testable.
package scoring

import (
	"fmt"
	"time"

	"github.com/yukeru/gelande/internal/resort"
)

// Score evaluates r with its current conditions (cond may be nil) at the
// given time. Rules short-circuit in order: season CLOSED, then not
// operating today, then the weighted composite.
//
// The weights are carried over from the original tuning unchanged, flat
// bonuses after the weighted sum included. Rebalancing them would shift
// every historical ranking, so they stay as they are.
func Score(r resort.Resort, cond *resort.ConditionRecord, now time.Time) resort.ScoreResult {
	if r.SeasonStatus == resort.SeasonClosed {
		return resort.ScoreResult{
			Status: resort.StatusClosed,
			Score:  0,
			Reason: closedReason(r),
		}
	}

	liftsOpen := intValue(cond, func(c *resort.ConditionRecord) *int { return c.LiftsOpen })
	if liftsOpen == 0 && !withinHours(r.Hours, now) {
		return resort.ScoreResult{
			Status: resort.StatusClosedToday,
			Score:  0,
			Reason: "Not operating right now",
		}
	}

	baseDepth := intValue(cond, func(c *resort.ConditionRecord) *int { return c.BaseDepthCM })
	newSnow := intValue(cond, func(c *resort.ConditionRecord) *int { return c.NewSnowCM })
	liftsTotal := intValue(cond, func(c *resort.ConditionRecord) *int { return c.LiftsTotal })

	score := 0.5 * NormalizeDepth(float64(baseDepth))
	score += min(float64(newSnow)*5, 20)

	ratio := float64(liftsOpen) / float64(max(liftsTotal, 1))
	score += ratio * 20

	if r.HasPark {
		score += 5
	}
	if r.HasNightSki {
		score += 3
	}
	if r.Difficulty == "mixed" {
		score += 2
	}

	if liftsOpen < 1 {
		score -= 10
	}
	if wd := now.Weekday(); wd != time.Saturday && wd != time.Sunday {
		score += 5
	}

	score = clamp(score, 0, 100)

	return resort.ScoreResult{
		Status: resort.StatusOpen,
		Score:  score,
		Reason: openReason(score, baseDepth, liftsOpen, liftsTotal),
	}
}

// NormalizeDepth maps base depth in cm onto a 0–100 scale in four linear
// segments: 1:1 up to 20, 20–50 onto 20–60, 50–100 onto 60–90, and a
// saturating tail above 100 that never quite reaches 100.
func NormalizeDepth(d float64) float64 {
	switch {
	case d <= 0:
		return 0
	case d <= 20:
		return d
	case d <= 50:
		return 20 + (d-20)/30*40
	case d <= 100:
		return 60 + (d-50)/50*30
	default:
		return 90 + min(10, (d-100)/10)
	}
}

func closedReason(r resort.Resort) string {
	if r.OpeningDate != nil {
		return fmt.Sprintf("Closed for the season, opens %s", r.OpeningDate.Format("2006-01-02"))
	}
	return "Closed for the season, opening date not announced"
}

// openReason picks the template for the score band, naming the base depth
// and, in the lower bands, the lift ratio, so the explanation always agrees
// with the number shown.
func openReason(score float64, baseDepth, liftsOpen, liftsTotal int) string {
	switch {
	case score >= 70:
		return fmt.Sprintf("Excellent conditions with a %dcm base", baseDepth)
	case score >= 50:
		return fmt.Sprintf("Good day on a %dcm base", baseDepth)
	case score >= 30:
		return fmt.Sprintf("Fair: %dcm base, %d of %d lifts running", baseDepth, liftsOpen, liftsTotal)
	default:
		return fmt.Sprintf("Marginal: %dcm base, %d of %d lifts running", baseDepth, liftsOpen, liftsTotal)
	}
}

// withinHours reports whether now falls inside the operating window for
// its day-of-week category. Resorts without configured hours are treated
// as always within hours.
func withinHours(h *resort.OperatingHours, now time.Time) bool {
	if h == nil {
		return true
	}

	window := h.Weekday
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		window = h.Weekend
	}

	openAt, err1 := time.Parse("15:04", window.Open)
	closeAt, err2 := time.Parse("15:04", window.Close)
	if err1 != nil || err2 != nil {
		return true
	}

	minutes := now.Hour()*60 + now.Minute()
	openMin := openAt.Hour()*60 + openAt.Minute()
	closeMin := closeAt.Hour()*60 + closeAt.Minute()
	return minutes >= openMin && minutes < closeMin
}

// intValue reads an optional measurement, treating absence as zero. A
// resort with no data scores as if it had none; excluding destinations for
// missing data is the pipeline's job, not this function's.
func intValue(cond *resort.ConditionRecord, field func(*resort.ConditionRecord) *int) int {
	if cond == nil {
		return 0
	}
	if p := field(cond); p != nil {
		return *p
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
