// Package audio plays synthesized speech files on the local sound device.
package audio

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

const targetSampleRate = beep.SampleRate(48000)

// Player is the playback surface used by the speech device.
type Player interface {
	// Play starts playback of an audio file. If startPaused is true, loads but pauses immediately.
	// onComplete is called when playback finishes on its own, never after Stop.
	Play(filepath string, startPaused bool, onComplete func()) error
	Pause()
	Resume()
	Stop()
	// Shutdown stops playback and removes the last played file.
	Shutdown()

	// IsPlaying returns true if audio is currently playing (not paused).
	IsPlaying() bool
	// IsBusy returns true if audio is loaded (playing or paused).
	IsBusy() bool
	IsPaused() bool
	SetVolume(vol float64)
	Volume() float64
	Remaining() time.Duration
}

// Manager implements Player using gopxl/beep.
type Manager struct {
	mu                 sync.RWMutex
	ctrl               *beep.Ctrl
	volume             float64
	isPaused           bool
	lastFile           string
	keepFiles          bool
	speakerInitialized bool
	streamer           *effects.Volume
	trackStreamer      beep.StreamSeekCloser
	trackFormat        beep.Format
}

// New creates a Manager. Unless keepFiles is set, each played file is
// removed once the next one has been loaded.
func New(volume float64, keepFiles bool) *Manager {
	m := &Manager{volume: 1.0, keepFiles: keepFiles}
	m.volume = clampVolume(volume)
	return m
}

// Play starts playback of an audio file.
func (m *Manager) Play(filepath string, startPaused bool, onComplete func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	streamer, format, err := DecodeMedia(filepath)
	if err != nil {
		return err
	}

	if err := m.ensureSpeakerInitialized(); err != nil {
		streamer.Close()
		return err
	}

	resampled := beep.Resample(3, format.SampleRate, targetSampleRate, streamer)
	volStreamer := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToPower(m.volume),
		Silent:   m.volume <= 0.01,
	}

	ctrl := &beep.Ctrl{Streamer: volStreamer, Paused: startPaused}
	m.streamer = volStreamer
	m.trackStreamer = streamer
	m.trackFormat = format
	m.ctrl = ctrl
	m.isPaused = startPaused

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		// Leave the speaker goroutine before touching our own lock.
		go func() {
			m.mu.Lock()
			if m.ctrl != ctrl {
				// Superseded by a newer Play or a Stop.
				m.mu.Unlock()
				return
			}
			m.ctrl = nil
			m.isPaused = false
			m.trackStreamer = nil
			m.mu.Unlock()
			streamer.Close()

			if onComplete != nil {
				onComplete()
			}
		}()
	})))

	if m.lastFile != "" && m.lastFile != filepath && !m.keepFiles {
		removeArtifact(m.lastFile)
	}
	m.lastFile = filepath

	slog.Debug("Audio: playing", "path", filepath, "paused", startPaused)
	return nil
}

// Pause pauses current playback.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl != nil {
		speaker.Lock()
		m.ctrl.Paused = true
		speaker.Unlock()
		m.isPaused = true
	}
}

// Resume resumes paused playback.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl != nil && m.isPaused {
		speaker.Lock()
		m.ctrl.Paused = false
		speaker.Unlock()
		m.isPaused = false
	}
}

// Stop stops current playback without firing its completion callback.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.ctrl != nil {
		speaker.Clear()
		m.ctrl = nil
		m.isPaused = false
	}
	if m.trackStreamer != nil {
		m.trackStreamer.Close()
		m.trackStreamer = nil
	}
}

func (m *Manager) ensureSpeakerInitialized() error {
	if m.speakerInitialized {
		return nil
	}
	if err := speaker.Init(targetSampleRate, targetSampleRate.N(time.Second/10)); err != nil {
		slog.Error("Failed to initialize speaker", "error", err)
		return err
	}
	m.speakerInitialized = true
	return nil
}

// Shutdown stops playback and deletes any residual audio artifact.
func (m *Manager) Shutdown() {
	m.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastFile != "" && !m.keepFiles {
		removeArtifact(m.lastFile)
	}
	m.lastFile = ""
}

// IsPlaying returns true if audio is currently playing.
func (m *Manager) IsPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ctrl != nil && !m.isPaused
}

// IsBusy returns true if audio is loaded (playing or paused).
func (m *Manager) IsBusy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ctrl != nil
}

// IsPaused returns true if playback is paused.
func (m *Manager) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPaused
}

// SetVolume sets playback volume (0.0 to 1.0).
func (m *Manager) SetVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.volume = clampVolume(vol)
	if m.streamer != nil && m.speakerInitialized {
		speaker.Lock()
		m.streamer.Volume = volumeToPower(m.volume)
		m.streamer.Silent = m.volume <= 0.01
		speaker.Unlock()
	}
}

// Volume returns current volume level.
func (m *Manager) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// Remaining returns the remaining time of the current playback.
func (m *Manager) Remaining() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.trackStreamer == nil || m.trackFormat.SampleRate == 0 {
		return 0
	}
	remainingSamples := m.trackStreamer.Len() - m.trackStreamer.Position()
	if remainingSamples < 0 {
		return 0
	}
	return m.trackFormat.SampleRate.D(remainingSamples)
}

func removeArtifact(path string) {
	if err := os.Remove(path); err == nil {
		slog.Debug("Audio: cleaned up speech artifact", "path", path)
	} else if !os.IsNotExist(err) {
		slog.Warn("Audio: failed to clean up speech artifact", "path", path, "error", err)
	}
}
