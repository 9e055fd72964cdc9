package narration

import (
	"sync"
	"time"
)

// DefaultTypewriterInterval is the reveal pace per character.
const DefaultTypewriterInterval = 30 * time.Millisecond

// Transcript is the on-screen copy of what is being said. With the
// typewriter enabled the text is revealed one character per interval.
type Transcript struct {
	mu       sync.Mutex
	interval time.Duration
	enabled  bool
	full     []rune
	shown    int
	stop     chan struct{}
	onUpdate func(visible string, complete bool)
}

// NewTranscript creates a transcript. onUpdate may be nil.
func NewTranscript(enabled bool, interval time.Duration, onUpdate func(visible string, complete bool)) *Transcript {
	if interval <= 0 {
		interval = DefaultTypewriterInterval
	}
	return &Transcript{enabled: enabled, interval: interval, onUpdate: onUpdate}
}

// Show replaces the transcript with text, cancelling any running reveal.
func (t *Transcript) Show(text string) {
	t.mu.Lock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.full = []rune(text)
	if !t.enabled || len(t.full) == 0 {
		t.shown = len(t.full)
		t.mu.Unlock()
		t.notify(text, true)
		return
	}
	t.shown = 0
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	t.notify("", false)
	go t.reveal(stop)
}

func (t *Transcript) reveal(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stop != stop {
				t.mu.Unlock()
				return
			}
			t.shown++
			visible := string(t.full[:t.shown])
			complete := t.shown >= len(t.full)
			if complete {
				t.stop = nil
			}
			t.mu.Unlock()

			t.notify(visible, complete)
			if complete {
				return
			}
		}
	}
}

func (t *Transcript) notify(visible string, complete bool) {
	if t.onUpdate != nil {
		t.onUpdate(visible, complete)
	}
}

// Visible returns the part revealed so far.
func (t *Transcript) Visible() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.full[:t.shown])
}

// Full returns the whole current text.
func (t *Transcript) Full() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.full)
}
