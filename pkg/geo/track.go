package geo

import "sync"

// DefaultTrailSpacing is the minimum gap between two kept breadcrumbs.
const DefaultTrailSpacing = 10.0

// Trail keeps a thinned breadcrumb polyline of where the walker has been.
// A point is kept only if it is farther than the spacing from the last kept point.
type Trail struct {
	mu      sync.RWMutex
	points  []Point
	spacing float64
}

// NewTrail creates a trail with the given spacing in meters.
func NewTrail(spacing float64) *Trail {
	if spacing <= 0 {
		spacing = DefaultTrailSpacing
	}
	return &Trail{spacing: spacing}
}

// Push records p and reports whether it was kept.
func (t *Trail) Push(p Point) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.points); n > 0 && Distance(t.points[n-1], p) <= t.spacing {
		return false
	}
	t.points = append(t.points, p)
	return true
}

// Points returns a copy of the kept breadcrumbs.
func (t *Trail) Points() []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}

// Len returns the number of kept breadcrumbs.
func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.points)
}

// Reset clears the trail.
func (t *Trail) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.points = nil
}
