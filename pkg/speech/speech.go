// Package speech provides the narration devices: a synthesizer that plays
// engine output through the sound card, and a silent pacer for headless runs.
package speech

import (
	"fmt"
	"log/slog"

	"voiceguide/pkg/audio"
	"voiceguide/pkg/config"
	"voiceguide/pkg/narration"
	"voiceguide/pkg/tracker"
	"voiceguide/pkg/tts"
	"voiceguide/pkg/tts/azure"
	"voiceguide/pkg/tts/edgetts"
	"voiceguide/pkg/tts/sapi"
)

// Engine names accepted in tts.engine.
const (
	EngineSilent = "silent"
	EngineEdge   = "edge-tts"
	EngineAzure  = "azure-speech"
	EngineSAPI   = "windows-sapi"
)

// Output is a narration device with a volume control.
type Output interface {
	narration.Device
	SetVolume(vol float64)
	Volume() float64
	Close()
}

// NewProvider builds the synthesis engine named by engine. The silent engine
// has no provider and returns nil.
func NewProvider(engine string, cfg config.TTSConfig, t *tracker.Tracker) (tts.Provider, error) {
	switch engine {
	case EngineSilent:
		return nil, nil
	case EngineEdge:
		ep, err := edgetts.LoadEndpoint()
		if err != nil {
			return nil, err
		}
		return edgetts.NewProvider(ep, t), nil
	case EngineAzure:
		if cfg.AzureSpeech.Key == "" {
			return nil, fmt.Errorf("azure speech key is not set")
		}
		return azure.NewProvider(cfg.AzureSpeech, t), nil
	case EngineSAPI:
		return sapi.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown tts engine %q", engine)
	}
}

// NewOutput returns the device for engine. An engine that cannot be set up
// falls back to the silent device so the tour keeps running.
func NewOutput(engine string, cfg config.TTSConfig, t *tracker.Tracker) Output {
	p, err := NewProvider(engine, cfg, t)
	if err != nil {
		slog.Error("Speech engine unavailable, narrating silently", "engine", engine, "error", err)
		return NewSilent(cfg.WordsPerSecond, cfg.Volume)
	}
	if p == nil {
		return NewSilent(cfg.WordsPerSecond, cfg.Volume)
	}
	slog.Info("Speech engine ready", "engine", engine)
	return NewSynth(engine, p, audio.New(cfg.Volume, false), cfg.CacheDir)
}
