// Package narration drives the speech device for the tour: one utterance at
// a time, with pause, resume and stop.
package narration

import (
	"log/slog"
	"sync"
)

// State is the playback state of the controller.
type State int

const (
	Idle State = iota
	Speaking
	Paused
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Device is a speech output. Implementations must call onDone from their own
// goroutine, never from inside Speak, and never for a cancelled utterance.
type Device interface {
	Speak(text, locale string, onDone func()) error
	Pause()
	Resume()
	Cancel()
	Speaking() bool
	Paused() bool
}

// Controller serializes utterances on a Device.
type Controller struct {
	mu         sync.Mutex
	dev        Device
	transcript *Transcript
	state      State
	gen        uint64
	text       string
	locale     string
	onIdle     func()
}

// NewController wraps dev. transcript may be nil.
func NewController(dev Device, transcript *Transcript) *Controller {
	return &Controller{dev: dev, transcript: transcript}
}

// OnIdle registers fn to run when an utterance finishes by itself.
// fn runs without any controller lock held.
func (c *Controller) OnIdle(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onIdle = fn
}

// Speak cancels whatever is speaking or paused and starts text.
func (c *Controller) Speak(text, locale string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.state != Idle {
		c.dev.Cancel()
	}
	c.state = Speaking
	c.text = text
	c.locale = locale

	if err := c.dev.Speak(text, locale, func() { c.finish(gen) }); err != nil {
		c.state = Idle
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if c.transcript != nil {
		c.transcript.Show(text)
	}
	return nil
}

// Pause pauses a speaking utterance and reports whether it did.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Speaking {
		return false
	}
	c.dev.Pause()
	c.state = Paused
	return true
}

// Resume continues a paused utterance and reports whether there was one.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Paused {
		return false
	}
	c.dev.Resume()
	c.state = Speaking
	return true
}

// Stop cancels all speech.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.state != Idle {
		c.dev.Cancel()
	}
	c.state = Idle
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns the text of the current or last utterance.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Show puts a status line on the transcript.
func (c *Controller) Show(line string) {
	if c.transcript != nil {
		c.transcript.Show(line)
	}
}

func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state == Idle {
		c.mu.Unlock()
		slog.Debug("Narration: ignoring stale completion", "gen", gen)
		return
	}
	c.state = Idle
	fn := c.onIdle
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}
