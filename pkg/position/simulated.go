package position

import (
	"sync"
	"time"

	"voiceguide/pkg/model"
)

// SimulatedSource turns a POI selection into a single sample at its exact coordinate.
type SimulatedSource struct {
	mu   sync.Mutex
	sink Sink
	now  func() time.Time
}

// NewSimulated creates a stopped simulated source.
func NewSimulated() *SimulatedSource {
	return &SimulatedSource{now: time.Now}
}

func (s *SimulatedSource) Mode() Mode { return Simulated }

func (s *SimulatedSource) Start(sink Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
	return nil
}

func (s *SimulatedSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = nil
}

// Select emits one sample at poi. The sink is called without locks held.
func (s *SimulatedSource) Select(poi *model.POI) error {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return ErrNotStarted
	}
	sink.HandleSample(s, Sample{Point: poi.Point(), Time: s.now()})
	return nil
}
