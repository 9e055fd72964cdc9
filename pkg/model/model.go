package model

import (
	"voiceguide/pkg/geo"
)

// POI is a point of interest of a guide, already merged with the texts of one language.
type POI struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// Point returns the POI coordinate.
func (p *POI) Point() geo.Point {
	return geo.Point{Lat: p.Lat, Lon: p.Lon}
}

// DisplayName returns the name, falling back to the id when the guide has no text for it.
func (p *POI) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// BasePOI is the language independent part of a POI.
type BasePOI struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// POIText is the per-language part of a POI.
type POIText struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// View is the initial map view of a guide.
type View struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

// Guide is a loaded tour in one language.
type Guide struct {
	Name      string   `json:"name"`
	Language  string   `json:"language"`
	View      View     `json:"initial_view"`
	POIs      []*POI   `json:"pois"`
	TourRoute []string `json:"tour_route"`
}

// Find returns the POI with the given id, or nil.
func (g *Guide) Find(id string) *POI {
	if g == nil {
		return nil
	}
	for _, p := range g.POIs {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CatalogEntry describes a published guide that can be fetched by gist id.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GistID      string `json:"gistId"`
}
