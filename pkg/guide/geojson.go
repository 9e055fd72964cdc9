package guide

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/model"
)

// MapState is what the map layers are drawn from.
type MapState struct {
	Guide       *model.Guide
	Visited     func(id string) bool
	Active      string
	Legs        [][]geo.Point // one path per consecutive route pair; nil draws straight legs
	Breadcrumbs []geo.Point
}

// FeatureCollection renders POIs, route legs and the breadcrumb trail.
// A leg is marked visited when its destination has been visited.
func FeatureCollection(st MapState) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if st.Guide == nil {
		return fc
	}
	visited := st.Visited
	if visited == nil {
		visited = func(string) bool { return false }
	}

	for _, p := range st.Guide.POIs {
		f := geojson.NewFeature(geo.ToOrb(p.Point()))
		f.ID = p.ID
		f.Properties["kind"] = "poi"
		f.Properties["id"] = p.ID
		f.Properties["name"] = p.DisplayName()
		f.Properties["visited"] = visited(p.ID)
		f.Properties["active"] = p.ID == st.Active
		fc.Append(f)
	}

	stops := RouteStops(st.Guide)
	for i := 0; i+1 < len(stops); i++ {
		from, to := stops[i], stops[i+1]
		path := []geo.Point{from.Point(), to.Point()}
		if i < len(st.Legs) && len(st.Legs[i]) >= 2 {
			path = st.Legs[i]
		}
		f := geojson.NewFeature(geo.LineString(path))
		f.Properties["kind"] = "leg"
		f.Properties["from"] = from.ID
		f.Properties["to"] = to.ID
		f.Properties["visited"] = visited(to.ID)
		fc.Append(f)
	}

	if len(st.Breadcrumbs) > 0 {
		mp := make(orb.MultiPoint, len(st.Breadcrumbs))
		for i, p := range st.Breadcrumbs {
			mp[i] = geo.ToOrb(p)
		}
		f := geojson.NewFeature(mp)
		f.Properties["kind"] = "breadcrumbs"
		fc.Append(f)
	}
	return fc
}
