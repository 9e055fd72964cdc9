package model

import (
	"time"
)

// NarrationKind tells why something was spoken.
type NarrationKind string

const (
	NarrationArrival NarrationKind = "arrival"
	NarrationReplay  NarrationKind = "replay"
)

// Narration records one utterance handed to the speech device.
type Narration struct {
	Kind      NarrationKind `json:"kind"`
	POIID     string        `json:"poi_id"`
	Title     string        `json:"title"`
	Script    string        `json:"script"`
	Locale    string        `json:"locale"`
	CreatedAt time.Time     `json:"created_at"`
}

// TourEventType names a session transition.
type TourEventType string

const (
	EventEntered   TourEventType = "entered"
	EventExited    TourEventType = "exited"
	EventNarration TourEventType = "narration"
	EventStatus    TourEventType = "status"
	EventMode      TourEventType = "mode"
	EventGuide     TourEventType = "guide"
	EventControl   TourEventType = "control"
	EventPosition  TourEventType = "position"
)

// TourEvent is one entry of the tour event stream.
type TourEvent struct {
	Type      TourEventType `json:"type"`
	POIID     string        `json:"poi_id,omitempty"`
	Title     string        `json:"title"`
	Summary   string        `json:"summary,omitempty"`
	Lat       float64       `json:"lat,omitempty"`
	Lon       float64       `json:"lon,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
