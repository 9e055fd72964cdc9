package tour

import (
	"voiceguide/pkg/geo"
	"voiceguide/pkg/model"
	"voiceguide/pkg/position"
)

// POIView is a POI with its tour flags.
type POIView struct {
	model.POI
	Visited bool `json:"visited"`
	Active  bool `json:"active"`
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Mode        position.Mode    `json:"mode"`
	Language    string           `json:"language"`
	GuideName   string           `json:"guide_name"`
	View        model.View       `json:"initial_view"`
	ActivePOI   string           `json:"active_poi,omitempty"`
	Visited     []string         `json:"visited"`
	Narration   string           `json:"narration"`
	Text        string           `json:"text"`
	Status      string           `json:"status"`
	Position    *position.Sample `json:"position,omitempty"`
	Breadcrumbs []geo.Point      `json:"breadcrumbs"`
	POIs        []POIView        `json:"pois"`
	TourRoute   []string         `json:"tour_route"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Mode:        s.mode,
		Language:    s.language,
		ActivePOI:   s.lastTriggered,
		Visited:     append([]string{}, s.visitedOrder...),
		Narration:   s.narrator.State().String(),
		Text:        s.narrator.Text(),
		Status:      s.status,
		Breadcrumbs: s.trail.Points(),
		POIs:        s.poiViewsLocked(),
	}
	if s.lastSample != nil {
		sample := *s.lastSample
		snap.Position = &sample
	}
	if s.guide != nil {
		snap.GuideName = s.guide.Name
		snap.View = s.guide.View
		snap.TourRoute = append([]string{}, s.guide.TourRoute...)
	}
	return snap
}

// POIs returns the POIs in guide order with their flags.
func (s *Session) POIs() []POIView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poiViewsLocked()
}

func (s *Session) poiViewsLocked() []POIView {
	pois := s.pois()
	out := make([]POIView, 0, len(pois))
	for _, p := range pois {
		out = append(out, POIView{POI: *p, Visited: s.visited[p.ID], Active: p.ID == s.lastTriggered})
	}
	return out
}

// Guide returns the loaded guide, nil before the first successful load.
// The guide is replaced, never modified, on reload.
func (s *Session) Guide() *model.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guide
}

// Visited reports whether the POI has been triggered in this session.
func (s *Session) Visited(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited[id]
}

// Mode returns the active position mode, empty before SetMode.
func (s *Session) Mode() position.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Language returns the current guide language.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}
