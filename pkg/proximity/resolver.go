// Package proximity decides which point of interest, if any, the walker is standing at.
package proximity

import (
	"math"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/model"
)

// DefaultThreshold is the trigger radius in meters.
const DefaultThreshold = 20.0

// Match is the result of a successful resolution.
type Match struct {
	POI      *model.POI
	Distance float64
}

// Resolver finds the nearest POI strictly within Threshold meters.
type Resolver struct {
	Threshold float64
}

// NewResolver returns a resolver; a non-positive threshold selects DefaultThreshold.
func NewResolver(threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{Threshold: threshold}
}

// Resolve returns the POI closest to pos if its distance is below the threshold.
// On equal distances the POI earlier in pois wins. NaN distances never match.
func (r *Resolver) Resolve(pos geo.Point, pois []*model.POI) (Match, bool) {
	var best Match
	found := false
	for _, p := range pois {
		if p == nil {
			continue
		}
		d := geo.Distance(pos, p.Point())
		if !(d < r.Threshold) {
			continue
		}
		if !found || d < best.Distance {
			best = Match{POI: p, Distance: d}
			found = true
		}
	}
	return best, found
}

// Nearest returns the closest POI regardless of the threshold.
func Nearest(pos geo.Point, pois []*model.POI) (Match, bool) {
	var best Match
	found := false
	for _, p := range pois {
		if p == nil {
			continue
		}
		d := geo.Distance(pos, p.Point())
		if math.IsNaN(d) {
			continue
		}
		if !found || d < best.Distance {
			best = Match{POI: p, Distance: d}
			found = true
		}
	}
	return best, found
}
