package travel

import (
	"math"

	"github.com/yukeru/gelande/internal/resort"
)

const earthRadiusKM = 6371.0

// speed tiers for the geometric fallback, in km/h plus a fixed base delay
// in minutes. The pass tier is checked first: pass-dependent routes are not
// reliably modeled by distance alone.
const (
	passSpeedKMH    = 45.0
	passBaseMin     = 45
	nearSpeedKMH    = 100.0
	nearBaseMin     = 10
	farSpeedKMH     = 60.0
	farBaseMin      = 20
	defaultSpeedKMH = 80.0
	defaultBaseMin  = 15

	nearDistanceKM = 50.0
	farDistanceKM  = 150.0
)

// passAccessIDs are resorts whose approach crosses a mountain pass.
var passAccessIDs = map[string]struct{}{
	"manza-onsen":      {},
	"marunuma-kogen":   {},
	"hakuba-happo-one": {},
}

// Haversine returns the great-circle distance between two coordinates in
// kilometers.
func Haversine(a, b resort.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// fallbackEstimate computes the deterministic geometric estimate: haversine
// distance converted to minutes through the tiered speed model. Tier order
// matters — the pass tier short-circuits the distance tiers.
func fallbackEstimate(resortID string, origin, dest resort.Coordinate) (distanceKM float64, minutes int) {
	distanceKM = Haversine(origin, dest)

	speed := defaultSpeedKMH
	base := defaultBaseMin
	if _, ok := passAccessIDs[resortID]; ok {
		speed, base = passSpeedKMH, passBaseMin
	} else if distanceKM <= nearDistanceKM {
		speed, base = nearSpeedKMH, nearBaseMin
	} else if distanceKM > farDistanceKM {
		speed, base = farSpeedKMH, farBaseMin
	}

	minutes = int(math.Round(distanceKM/speed*60)) + base
	return distanceKM, minutes
}
