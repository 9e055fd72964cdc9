// Package remote relays positions reported by connected clients (browser
// geolocation over the websocket stream) to the tour.
package remote

import (
	"sync"
	"time"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/position"
)

type registration struct {
	onSample func(position.Sample)
	onError  func(error)
}

// Hub implements position.Watcher. Every registration receives every
// pushed sample and error.
type Hub struct {
	mu     sync.Mutex
	regs   map[position.WatchID]registration
	nextID position.WatchID
	last   *position.Sample
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{regs: make(map[position.WatchID]registration)}
}

func (h *Hub) Watch(onSample func(position.Sample), onError func(error), _ position.WatchOptions) (position.WatchID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.regs[h.nextID] = registration{onSample: onSample, onError: onError}
	return h.nextID, nil
}

func (h *Hub) ClearWatch(id position.WatchID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.regs, id)
}

// Watching reports how many registrations are active.
func (h *Hub) Watching() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.regs)
}

// Push delivers a fix from a client. A zero time is stamped with now.
func (h *Hub) Push(lat, lon, accuracy float64, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	s := position.Sample{Point: geo.Point{Lat: lat, Lon: lon}, Accuracy: accuracy, Time: at}

	h.mu.Lock()
	h.last = &s
	regs := h.snapshot()
	h.mu.Unlock()

	for _, r := range regs {
		r.onSample(s)
	}
}

// PushError delivers a geolocation failure from a client.
func (h *Hub) PushError(code position.Code) {
	err := &position.LocationError{Code: code}

	h.mu.Lock()
	regs := h.snapshot()
	h.mu.Unlock()

	for _, r := range regs {
		if r.onError != nil {
			r.onError(err)
		}
	}
}

// Last returns the most recent pushed sample.
func (h *Hub) Last() (position.Sample, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return position.Sample{}, false
	}
	return *h.last, true
}

func (h *Hub) snapshot() []registration {
	regs := make([]registration, 0, len(h.regs))
	for _, r := range h.regs {
		regs = append(regs, r)
	}
	return regs
}
