// Package position produces the visitor's location for the tour: live from
// a watcher (browser geolocation or the route walker) or simulated from the
// operator's POI selection.
package position

import (
	"fmt"
	"time"

	"voiceguide/pkg/geo"
)

// Sample is one position fix.
type Sample struct {
	geo.Point
	Accuracy float64   `json:"accuracy"` // metres, 0 when exact
	Time     time.Time `json:"time"`
}

// Mode selects which source feeds the tour.
type Mode string

const (
	Live      Mode = "live"
	Simulated Mode = "simulated"
)

// ParseMode accepts "live" and "simulated".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Live, Simulated:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown position mode %q", s)
	}
}

// Sink receives what a source produces.
type Sink interface {
	HandleSample(src Source, s Sample)
	HandleError(src Source, err error)
}

// Source produces samples until stopped.
type Source interface {
	Mode() Mode
	Start(sink Sink) error
	Stop()
}

// WatchOptions mirror the geolocation watch options.
type WatchOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// HighAccuracy is what the live source asks for.
var HighAccuracy = WatchOptions{HighAccuracy: true, Timeout: 5 * time.Second, MaximumAge: 0}

// WatchID identifies a watch registration.
type WatchID int

// Watcher delivers a stream of samples and errors to each registration.
// ClearWatch must return without waiting for callbacks in flight.
type Watcher interface {
	Watch(onSample func(Sample), onError func(error), opts WatchOptions) (WatchID, error)
	ClearWatch(id WatchID)
}
