package api

import (
	"net/http"
	"sync"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/guide"
	"voiceguide/pkg/tour"
)

// Broadcaster pushes a frame to connected clients.
type Broadcaster interface {
	Broadcast(typ string, data any)
}

// MapView is the state of the map as the tour drives it.
type MapView struct {
	Highlighted []string      `json:"highlighted"`
	User        *geo.Point    `json:"user,omitempty"`
	Legs        [][]geo.Point `json:"legs"`
}

// MapState implements tour.Map by recording highlights and the user marker
// and pushing every change to the browser.
type MapState struct {
	out Broadcaster

	mu          sync.Mutex
	highlighted map[string]bool
	order       []string
	user        *geo.Point
	legs        [][]geo.Point
}

// NewMapState creates an empty map. out may be nil.
func NewMapState(out Broadcaster) *MapState {
	return &MapState{out: out, highlighted: make(map[string]bool)}
}

func (m *MapState) Highlight(id string) {
	m.mu.Lock()
	if !m.highlighted[id] {
		m.highlighted[id] = true
		m.order = append(m.order, id)
	}
	m.mu.Unlock()
	m.publish("highlight", map[string]string{"id": id})
}

func (m *MapState) Unhighlight(id string) {
	m.mu.Lock()
	if m.highlighted[id] {
		delete(m.highlighted, id)
		for i, v := range m.order {
			if v == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()
	m.publish("unhighlight", map[string]string{"id": id})
}

func (m *MapState) PlaceUserMarker(p geo.Point) {
	m.mu.Lock()
	m.user = &p
	m.mu.Unlock()
	m.publish("marker", p)
}

// SetLegs replaces the drawn tour route.
func (m *MapState) SetLegs(legs [][]geo.Point) {
	m.mu.Lock()
	m.legs = legs
	m.mu.Unlock()
	m.publish("route", legs)
}

// Legs returns the drawn tour route.
func (m *MapState) Legs() [][]geo.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.legs
}

// View copies the current state.
func (m *MapState) View() MapView {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := MapView{Highlighted: append([]string{}, m.order...), Legs: m.legs}
	if m.user != nil {
		u := *m.user
		v.User = &u
	}
	if v.Legs == nil {
		v.Legs = [][]geo.Point{}
	}
	return v
}

func (m *MapState) publish(typ string, data any) {
	if m.out != nil {
		m.out.Broadcast(typ, data)
	}
}

// MapHandler serves the map endpoints.
type MapHandler struct {
	state   *MapState
	session *tour.Session
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(state *MapState, session *tour.Session) *MapHandler {
	return &MapHandler{state: state, session: session}
}

// HandleState handles GET /api/map/state
func (h *MapHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.View())
}

// HandleGeoJSON handles GET /api/map/geojson
func (h *MapHandler) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	fc := guide.FeatureCollection(guide.MapState{
		Guide:       h.session.Guide(),
		Visited:     h.session.Visited,
		Active:      snap.ActivePOI,
		Legs:        h.state.Legs(),
		Breadcrumbs: snap.Breadcrumbs,
	})
	data, err := fc.MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}
