package config

import (
	"context"
	"strconv"

	"voiceguide/pkg/store"
)

// Provider is the live view of the settings: the static file merged with
// preferences the user changed at runtime.
type Provider interface {
	Language(ctx context.Context) string
	GistID(ctx context.Context) string
	Mode(ctx context.Context) string
	Volume(ctx context.Context) float64
	Engine(ctx context.Context) string

	SetLanguage(ctx context.Context, lang string) error
	SetMode(ctx context.Context, mode string) error
	SetVolume(ctx context.Context, vol float64) error

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider. A nil store yields the static values only.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

func (p *UnifiedProvider) Language(ctx context.Context) string {
	return p.getString(ctx, KeyLanguage, p.base.Guide.Language)
}

func (p *UnifiedProvider) GistID(ctx context.Context) string {
	return p.getString(ctx, KeyGistID, p.base.Guide.GistID)
}

func (p *UnifiedProvider) Mode(ctx context.Context) string {
	return p.getString(ctx, KeyMode, p.base.Tour.Mode)
}

func (p *UnifiedProvider) Volume(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyVolume, p.base.TTS.Volume)
}

func (p *UnifiedProvider) Engine(ctx context.Context) string {
	return p.getString(ctx, KeyEngine, p.base.TTS.Engine)
}

func (p *UnifiedProvider) SetLanguage(ctx context.Context, lang string) error {
	return p.set(ctx, KeyLanguage, lang)
}

func (p *UnifiedProvider) SetMode(ctx context.Context, mode string) error {
	return p.set(ctx, KeyMode, mode)
}

func (p *UnifiedProvider) SetVolume(ctx context.Context, vol float64) error {
	return p.set(ctx, KeyVolume, strconv.FormatFloat(vol, 'f', -1, 64))
}

// --- Helpers ---

func (p *UnifiedProvider) set(ctx context.Context, key, val string) error {
	if p.store == nil {
		return nil
	}
	return p.store.SetState(ctx, key, val)
}

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}
