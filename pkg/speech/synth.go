package speech

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"voiceguide/pkg/audio"
	"voiceguide/pkg/tts"
)

// Synth speaks by rendering text with a tts.Provider and playing the file.
// Synthesis runs in the background; pausing before playback starts makes the
// audio load paused.
type Synth struct {
	name     string
	provider tts.Provider
	player   audio.Player
	dir      string

	voicesOnce sync.Once
	voices     []tts.Voice

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	speaking bool
	paused   bool
}

// NewSynth creates a synthesizing device writing temporary audio to dir.
func NewSynth(name string, p tts.Provider, player audio.Player, dir string) *Synth {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Synth{name: name, provider: p, player: player, dir: dir}
}

// Speak starts synthesizing text. onDone runs once playback ends by itself.
func (s *Synth) Speak(text, locale string, onDone func()) error {
	s.mu.Lock()
	s.stopLocked()
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.speaking = true
	s.paused = false
	s.mu.Unlock()

	go s.run(ctx, gen, text, locale, onDone)
	return nil
}

func (s *Synth) run(ctx context.Context, gen uint64, text, locale string, onDone func()) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		slog.Error("Speech: cannot create audio dir", "dir", s.dir, "error", err)
		s.finish(gen, onDone)
		return
	}

	base := filepath.Join(s.dir, "utterance_"+uuid.NewString())
	format, err := s.provider.Synthesize(ctx, tts.NormalizeText(text), s.voiceFor(ctx, locale), locale, base)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("Speech: synthesis failed", "engine", s.name, "fatal", tts.IsFatalError(err), "error", err)
		s.finish(gen, onDone)
		return
	}

	path := base
	if !strings.HasSuffix(path, "."+format) {
		path += "." + format
	}
	if err := tts.VerifyAudioFile(path); err != nil {
		slog.Error("Speech: unusable audio", "engine", s.name, "error", err)
		_ = os.Remove(path)
		s.finish(gen, onDone)
		return
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		_ = os.Remove(path)
		return
	}
	err = s.player.Play(path, s.paused, func() { s.finish(gen, onDone) })
	s.mu.Unlock()

	if err != nil {
		slog.Error("Speech: playback failed", "path", path, "error", err)
		s.finish(gen, onDone)
	}
}

func (s *Synth) finish(gen uint64, onDone func()) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.speaking = false
	s.paused = false
	s.cancel = nil
	s.mu.Unlock()

	if onDone != nil {
		onDone()
	}
}

func (s *Synth) voiceFor(ctx context.Context, locale string) string {
	s.voicesOnce.Do(func() {
		voices, err := s.provider.Voices(ctx)
		if err != nil {
			slog.Warn("Speech: voice list unavailable, using engine defaults", "engine", s.name, "error", err)
			return
		}
		s.voices = voices
	})
	return tts.VoiceFor(s.voices, locale)
}

// Pause holds the current utterance, also while it is still being synthesized.
func (s *Synth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.speaking || s.paused {
		return
	}
	s.paused = true
	s.player.Pause()
}

// Resume continues a paused utterance.
func (s *Synth) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	s.player.Resume()
}

// Cancel drops the current utterance without calling its onDone.
func (s *Synth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

func (s *Synth) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.speaking {
		s.player.Stop()
	}
	s.speaking = false
	s.paused = false
}

func (s *Synth) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking && !s.paused
}

func (s *Synth) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Synth) SetVolume(vol float64) { s.player.SetVolume(vol) }

func (s *Synth) Volume() float64 { return s.player.Volume() }

// Close cancels speech and releases the audio device.
func (s *Synth) Close() {
	s.Cancel()
	s.player.Shutdown()
}
