package guide

import (
	"voiceguide/pkg/model"
)

// ExportBase returns the language independent POI data of g.
func ExportBase(g *model.Guide) []model.BasePOI {
	out := make([]model.BasePOI, 0, len(g.POIs))
	for _, p := range g.POIs {
		out = append(out, model.BasePOI{ID: p.ID, Lat: p.Lat, Lon: p.Lon})
	}
	return out
}

// ExportGist returns g in the guide.json layout used for gists.
func ExportGist(g *model.Guide) GistGuide {
	gg := GistGuide{
		InitialView: g.View,
		PoiBaseData: ExportBase(g),
		POIs:        make([]model.POIText, 0, len(g.POIs)),
		TourRoute:   append([]string{}, g.TourRoute...),
	}
	for _, p := range g.POIs {
		gg.POIs = append(gg.POIs, model.POIText{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return gg
}
