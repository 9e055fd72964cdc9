package speech

import (
	"strings"
	"sync"
	"time"

	"voiceguide/pkg/tts"
)

// DefaultWordsPerSecond paces the silent device like a calm speaker.
const DefaultWordsPerSecond = 2.5

// Silent is a device that produces no sound but takes as long as reading the
// text aloud would. It keeps pause, resume and completion timing realistic on
// machines without audio.
type Silent struct {
	mu             sync.Mutex
	wordsPerSecond float64
	volume         float64

	gen       uint64
	timer     *time.Timer
	started   time.Time
	remaining time.Duration
	speaking  bool
	paused    bool
	onDone    func()
}

// NewSilent creates a silent device reading wordsPerSecond words per second.
func NewSilent(wordsPerSecond, volume float64) *Silent {
	if wordsPerSecond <= 0 {
		wordsPerSecond = DefaultWordsPerSecond
	}
	return &Silent{wordsPerSecond: wordsPerSecond, volume: volume}
}

// Duration is how long text takes to read.
func (s *Silent) Duration(text string) time.Duration {
	words := len(strings.Fields(text))
	return time.Duration(float64(words) / s.wordsPerSecond * float64(time.Second))
}

func (s *Silent) Speak(text, locale string, onDone func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	s.onDone = onDone
	s.speaking = true
	s.paused = false
	s.remaining = s.Duration(text)
	s.startLocked()

	tts.Log("SILENT", locale, text, 0, nil)
	return nil
}

func (s *Silent) startLocked() {
	gen := s.gen
	s.started = time.Now()
	s.timer = time.AfterFunc(s.remaining, func() { s.fire(gen) })
}

func (s *Silent) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.speaking || s.paused {
		s.mu.Unlock()
		return
	}
	s.speaking = false
	s.timer = nil
	done := s.onDone
	s.onDone = nil
	s.mu.Unlock()

	if done != nil {
		done()
	}
}

func (s *Silent) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.speaking || s.paused {
		return
	}
	s.timer.Stop()
	s.timer = nil
	s.remaining -= time.Since(s.started)
	if s.remaining < 0 {
		s.remaining = 0
	}
	s.paused = true
}

func (s *Silent) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	s.gen++
	s.startLocked()
}

func (s *Silent) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

func (s *Silent) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.speaking = false
	s.paused = false
	s.onDone = nil
}

func (s *Silent) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking && !s.paused
}

func (s *Silent) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Silent) SetVolume(vol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = vol
}

func (s *Silent) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Silent) Close() { s.Cancel() }
