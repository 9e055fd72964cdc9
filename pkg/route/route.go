// Package route draws the walking path between consecutive tour stops.
package route

import (
	"context"
	"log/slog"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/model"
)

// Planner finds a path between two points. The path starts at from and ends at to.
type Planner interface {
	Plan(ctx context.Context, from, to geo.Point) ([]geo.Point, error)
}

// Straight joins the two points directly.
type Straight struct{}

func (Straight) Plan(_ context.Context, from, to geo.Point) ([]geo.Point, error) {
	return []geo.Point{from, to}, nil
}

// Build plans one leg per consecutive pair of stops in order. Ids that name
// no POI are skipped. A leg the planner cannot serve is drawn straight.
func Build(ctx context.Context, p Planner, order []string, pois []*model.POI) [][]geo.Point {
	byID := make(map[string]*model.POI, len(pois))
	for _, poi := range pois {
		byID[poi.ID] = poi
	}
	var stops []*model.POI
	for _, id := range order {
		if poi, ok := byID[id]; ok {
			stops = append(stops, poi)
		}
	}

	legs := make([][]geo.Point, 0, max(len(stops)-1, 0))
	for i := 0; i+1 < len(stops); i++ {
		from, to := stops[i].Point(), stops[i+1].Point()
		path, err := p.Plan(ctx, from, to)
		if err != nil || len(path) < 2 {
			if err != nil {
				slog.Warn("Route: planner failed, using a straight leg", "from", stops[i].ID, "to", stops[i+1].ID, "error", err)
			}
			path = []geo.Point{from, to}
		}
		legs = append(legs, path)
	}
	return legs
}

// Flatten joins legs into one path, dropping the repeated joint points.
func Flatten(legs [][]geo.Point) []geo.Point {
	var out []geo.Point
	for i, leg := range legs {
		if i > 0 && len(leg) > 0 {
			leg = leg[1:]
		}
		out = append(out, leg...)
	}
	return out
}
