package narration

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type utterance struct {
	text      string
	locale    string
	onDone    func()
	cancelled bool
}

// fakeDevice records utterances; tests complete them by hand.
type fakeDevice struct {
	mu       sync.Mutex
	spoken   []*utterance
	current  *utterance
	paused   bool
	pauses   int
	resumes  int
	speakErr error
}

func (d *fakeDevice) Speak(text, locale string, onDone func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.speakErr != nil {
		return d.speakErr
	}
	u := &utterance{text: text, locale: locale, onDone: onDone}
	d.spoken = append(d.spoken, u)
	d.current = u
	d.paused = false
	return nil
}

func (d *fakeDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pauses++
	d.paused = true
}

func (d *fakeDevice) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resumes++
	d.paused = false
}

func (d *fakeDevice) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.cancelled = true
		d.current = nil
	}
	d.paused = false
}

func (d *fakeDevice) Speaking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current != nil && !d.paused
}

func (d *fakeDevice) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// audible returns the utterances that were not cancelled.
func (d *fakeDevice) audible() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, u := range d.spoken {
		if !u.cancelled {
			out = append(out, u.text)
		}
	}
	return out
}

func (d *fakeDevice) complete(i int) {
	d.mu.Lock()
	u := d.spoken[i]
	if d.current == u {
		d.current = nil
	}
	d.mu.Unlock()
	u.onDone()
}

func TestController_SpeakPauseResumeStop(t *testing.T) {
	dev := &fakeDevice{}
	c := NewController(dev, nil)
	assert.Equal(t, Idle, c.State())

	// Pause and resume are no-ops when idle
	assert.False(t, c.Pause())
	assert.False(t, c.Resume())

	require.NoError(t, c.Speak("hello", "en-US"))
	assert.Equal(t, Speaking, c.State())
	assert.Equal(t, "hello", c.Text())

	assert.False(t, c.Resume(), "resume only applies when paused")
	assert.True(t, c.Pause())
	assert.Equal(t, Paused, c.State())
	assert.False(t, c.Pause(), "pause only applies when speaking")

	assert.True(t, c.Resume())
	assert.Equal(t, Speaking, c.State())
	assert.Equal(t, 1, dev.pauses)
	assert.Equal(t, 1, dev.resumes)

	c.Stop()
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, dev.audible())
}

func TestController_CompletionGoesIdle(t *testing.T) {
	dev := &fakeDevice{}
	c := NewController(dev, nil)

	idle := make(chan struct{}, 1)
	c.OnIdle(func() { idle <- struct{}{} })

	require.NoError(t, c.Speak("one", "en-US"))
	dev.complete(0)

	assert.Equal(t, Idle, c.State())
	assert.Len(t, idle, 1)
}

func TestController_SpeakCancelsPrevious(t *testing.T) {
	dev := &fakeDevice{}
	c := NewController(dev, nil)

	require.NoError(t, c.Speak("A", "en-US"))
	require.NoError(t, c.Speak("B", "en-US"))

	assert.Equal(t, []string{"B"}, dev.audible())

	// A's late completion must not end B
	dev.complete(0)
	assert.Equal(t, Speaking, c.State())

	dev.complete(1)
	assert.Equal(t, Idle, c.State())
}

func TestController_SpeakWhilePaused(t *testing.T) {
	dev := &fakeDevice{}
	c := NewController(dev, nil)

	require.NoError(t, c.Speak("A", "en-US"))
	require.True(t, c.Pause())
	require.NoError(t, c.Speak("B", "en-US"))

	assert.Equal(t, Speaking, c.State())
	assert.Equal(t, []string{"B"}, dev.audible())
}

func TestController_StopThenSpeak(t *testing.T) {
	dev := &fakeDevice{}
	c := NewController(dev, nil)

	var idles int
	c.OnIdle(func() { idles++ })

	require.NoError(t, c.Speak("old", "en-US"))
	c.Stop()
	require.NoError(t, c.Speak("text", "en-US"))

	// Exactly one audible utterance, never an overlap
	assert.Equal(t, []string{"text"}, dev.audible())

	dev.complete(0)
	assert.Equal(t, Speaking, c.State(), "stale completion after stop is ignored")
	assert.Equal(t, 0, idles)

	dev.complete(1)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 1, idles)
}

func TestController_DeviceError(t *testing.T) {
	dev := &fakeDevice{speakErr: errors.New("no audio")}
	c := NewController(dev, nil)

	err := c.Speak("hello", "en-US")
	assert.Error(t, err)
	assert.Equal(t, Idle, c.State())
}

func TestController_ShowsTranscript(t *testing.T) {
	var got []string
	tr := NewTranscript(false, 0, func(visible string, complete bool) {
		got = append(got, visible)
	})
	c := NewController(&fakeDevice{}, tr)

	require.NoError(t, c.Speak("spoken words", "en-US"))
	c.Show("status line")

	assert.Equal(t, []string{"spoken words", "status line"}, got)
	assert.Equal(t, "status line", tr.Full())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "speaking", Speaking.String())
	assert.Equal(t, "paused", Paused.String())
}
