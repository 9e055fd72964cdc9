// Package walker emulates a GPS receiver carried along the tour route at
// walking pace. It stands in for browser geolocation on machines without a
// positioning device.
package walker

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/logging"
	"voiceguide/pkg/position"
)

const (
	defaultSpeed = 1.4 // m/s
	defaultTick  = time.Second
)

// Config holds pacing for the walk.
type Config struct {
	Speed  float64       // metres per second
	Tick   time.Duration // interval between samples
	Dwell  time.Duration // time spent at each stop
	Jitter float64       // max random offset of a sample in metres
	Loop   bool          // restart from the first waypoint at the end
}

// Waypoint is a point of the walked path. Stops are dwelt at.
type Waypoint struct {
	geo.Point
	Stop bool
}

type subscription struct {
	onSample func(position.Sample)
	onError  func(error)
}

// Walker implements position.Watcher.
type Walker struct {
	cfg Config
	rnd *rand.Rand

	mu         sync.Mutex
	path       []Waypoint
	idx        int // last waypoint reached
	pos        geo.Point
	dwellUntil time.Time
	finished   bool
	subs       map[position.WatchID]subscription
	nextID     position.WatchID
	stopCh     chan struct{}
}

// New creates a walker with no route.
func New(cfg Config) *Walker {
	if cfg.Speed <= 0 {
		cfg.Speed = defaultSpeed
	}
	if cfg.Tick <= 0 {
		cfg.Tick = defaultTick
	}
	return &Walker{
		cfg:  cfg,
		rnd:  rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		subs: make(map[position.WatchID]subscription),
	}
}

// SetRoute replaces the path and puts the walker on its first waypoint.
func (w *Walker) SetRoute(path []Waypoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.path = append([]Waypoint(nil), path...)
	w.idx = 0
	w.finished = false
	w.dwellUntil = time.Time{}
	if len(w.path) > 0 {
		w.pos = w.path[0].Point
	}
}

// Position returns the current true position, without jitter.
func (w *Walker) Position() (geo.Point, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pos, len(w.path) > 0
}

// Watch registers callbacks and starts walking if this is the first watch.
func (w *Walker) Watch(onSample func(position.Sample), onError func(error), _ position.WatchOptions) (position.WatchID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	w.subs[id] = subscription{onSample: onSample, onError: onError}

	if w.stopCh == nil {
		w.stopCh = make(chan struct{})
		go w.loop(w.stopCh)
		slog.Info("Walker: started", "waypoints", len(w.path), "speed_mps", w.cfg.Speed)
	}
	return id, nil
}

// ClearWatch removes a registration. The walk stops with the last one; the
// loop goroutine is signalled, not awaited.
func (w *Walker) ClearWatch(id position.WatchID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.subs, id)
	if len(w.subs) == 0 && w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
		slog.Info("Walker: stopped")
	}
}

func (w *Walker) loop(stop chan struct{}) {
	ticker := time.NewTicker(w.cfg.Tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			w.tick(stop, now, dt)
		}
	}
}

func (w *Walker) tick(stop chan struct{}, now time.Time, dt time.Duration) {
	w.mu.Lock()
	if w.stopCh != stop {
		w.mu.Unlock()
		return
	}
	subs := make([]subscription, 0, len(w.subs))
	for _, s := range w.subs {
		subs = append(subs, s)
	}

	if len(w.path) == 0 {
		w.mu.Unlock()
		for _, s := range subs {
			if s.onError != nil {
				s.onError(position.ErrPositionUnavailable)
			}
		}
		return
	}

	w.advance(now, dt)
	sample := position.Sample{Point: w.jitter(w.pos), Accuracy: w.cfg.Jitter, Time: now}
	w.mu.Unlock()

	logging.TraceDefault("Walker: sample", "lat", sample.Lat, "lon", sample.Lon)
	for _, s := range subs {
		s.onSample(sample)
	}
}

// advance moves along the path by dt at the configured speed. Callers hold w.mu.
// A looping walk ends when the path has no length to cover.
func (w *Walker) advance(now time.Time, dt time.Duration) {
	if w.finished || now.Before(w.dwellUntil) {
		return
	}

	remaining := w.cfg.Speed * dt.Seconds()
	for remaining > 0 {
		if w.idx >= len(w.path)-1 {
			if !w.cfg.Loop || w.lapLength() == 0 {
				w.finished = true
				return
			}
			w.idx = 0
			w.pos = w.path[0].Point
			continue
		}

		next := w.path[w.idx+1]
		d := geo.Distance(w.pos, next.Point)
		if d > remaining {
			w.pos = geo.DestinationPoint(w.pos, remaining, geo.Bearing(w.pos, next.Point))
			return
		}

		w.pos = next.Point
		w.idx++
		remaining -= d
		if next.Stop && w.cfg.Dwell > 0 {
			w.dwellUntil = now.Add(w.cfg.Dwell)
			return
		}
	}
}

func (w *Walker) lapLength() float64 {
	pts := make([]geo.Point, len(w.path))
	for i, wp := range w.path {
		pts[i] = wp.Point
	}
	return geo.PathLength(pts)
}

func (w *Walker) jitter(p geo.Point) geo.Point {
	if w.cfg.Jitter <= 0 {
		return p
	}
	return geo.DestinationPoint(p, w.rnd.Float64()*w.cfg.Jitter, w.rnd.Float64()*360)
}
