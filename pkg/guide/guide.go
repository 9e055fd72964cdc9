// Package guide loads tour content: POI coordinates, per-language texts and
// the tour route, from a local directory or a published gist.
package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/model"
)

var (
	// ErrNotFound means the guide has no data for the requested language.
	ErrNotFound = errors.New("guide data not found")
	// ErrLoad means the guide data exists but cannot be used.
	ErrLoad = errors.New("guide data invalid")
	// ErrInvalidLanguage means a language code is not a plain language tag.
	ErrInvalidLanguage = errors.New("invalid language code")
)

const defaultZoom = 17

// Source is a place guides are loaded from.
type Source interface {
	Load(ctx context.Context, lang string) (*model.Guide, error)
	Languages(ctx context.Context) ([]model.LanguageInfo, error)
	Kind() string
	Location() string
}

// CheckLanguage accepts well-formed language tags made of letters, digits
// and hyphens only, so a code can be used in a file name.
func CheckLanguage(code string) error {
	if code == "" || len(code) > 35 {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
	}
	for _, r := range code {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
			return fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
		}
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidLanguage, code, err)
	}
	return nil
}

// Merge joins base coordinates with the texts of one language, in base
// order. POIs with invalid coordinates or repeated ids are dropped; POIs
// without text are named by their id. Route entries that name no POI are
// dropped too.
func Merge(name, lang string, base []model.BasePOI, texts []model.POIText, route []string) *model.Guide {
	byID := make(map[string]model.POIText, len(texts))
	for _, t := range texts {
		byID[t.ID] = t
	}

	g := &model.Guide{Name: name, Language: lang}
	seen := make(map[string]bool, len(base))
	for _, b := range base {
		if b.ID == "" {
			slog.Warn("Guide: POI without id dropped", "lat", b.Lat, "lon", b.Lon)
			continue
		}
		if seen[b.ID] {
			slog.Warn("Guide: duplicate POI id dropped", "id", b.ID)
			continue
		}
		if !(geo.Point{Lat: b.Lat, Lon: b.Lon}).Valid() {
			slog.Warn("Guide: POI with invalid coordinates dropped", "id", b.ID, "lat", b.Lat, "lon", b.Lon)
			continue
		}
		seen[b.ID] = true

		poi := &model.POI{ID: b.ID, Lat: b.Lat, Lon: b.Lon, Name: b.ID}
		if t, ok := byID[b.ID]; ok {
			if t.Name != "" {
				poi.Name = t.Name
			}
			poi.Description = t.Description
		}
		g.POIs = append(g.POIs, poi)
	}

	for _, id := range route {
		if !seen[id] {
			slog.Warn("Guide: route stop without POI dropped", "id", id)
			continue
		}
		g.TourRoute = append(g.TourRoute, id)
	}
	if len(route) == 0 {
		for _, p := range g.POIs {
			g.TourRoute = append(g.TourRoute, p.ID)
		}
	}

	g.View = fitView(g.POIs)
	return g
}

// fitView centres the map on the POIs.
func fitView(pois []*model.POI) model.View {
	if len(pois) == 0 {
		return model.View{Zoom: defaultZoom}
	}
	points := make([]geo.Point, len(pois))
	for i, p := range pois {
		points[i] = p.Point()
	}
	c := geo.FromOrb(geo.Bound(points).Center())
	return model.View{Lat: c.Lat, Lon: c.Lon, Zoom: defaultZoom}
}

// RouteStops returns the route POIs in tour order.
func RouteStops(g *model.Guide) []*model.POI {
	stops := make([]*model.POI, 0, len(g.TourRoute))
	for _, id := range g.TourRoute {
		if p := g.Find(id); p != nil {
			stops = append(stops, p)
		}
	}
	return stops
}

func loadErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrLoad, what, err)
}
