// Package tts defines the speech synthesis engines the guide can speak through.
package tts

import (
	"context"
	"errors"
)

const (
	// MinAudioSize is the minimum size of a synthesized audio file (1KB).
	// Files smaller than this are likely failed synthesis attempts.
	MinAudioSize = 1024

	// DefaultLocale is used when a caller passes no locale.
	DefaultLocale = "en-US"
)

// Provider defines the interface for Text-To-Speech engines.
type Provider interface {
	// Synthesize renders text spoken in locale with the given voice and writes it to outputPath.
	// An empty voice selects the engine's default for the locale.
	// Returns the audio format ("mp3", "wav") and error.
	Synthesize(ctx context.Context, text, voice, locale, outputPath string) (string, error)

	// Voices returns the voices the engine can speak with.
	Voices(ctx context.Context) ([]Voice, error)
}

// Voice represents an available TTS voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	IsNeural bool   `json:"is_neural"`
}

// VoiceFor returns the first voice whose language matches locale exactly,
// then one matching the base language, then "".
func VoiceFor(voices []Voice, locale string) string {
	for _, v := range voices {
		if v.Language == locale {
			return v.ID
		}
	}
	base := baseLanguage(locale)
	for _, v := range voices {
		if baseLanguage(v.Language) == base {
			return v.ID
		}
	}
	return ""
}

// FatalError represents a TTS error that should trigger fallback to another provider.
// Examples: rate limits (429), server errors (5xx), auth failures (401/403).
type FatalError struct {
	StatusCode int
	Message    string
}

func (e *FatalError) Error() string {
	return e.Message
}

// NewFatalError creates a new FatalError with the given status code and message.
func NewFatalError(statusCode int, message string) *FatalError {
	return &FatalError{StatusCode: statusCode, Message: message}
}

// IsFatalError checks if an error is a TTS fatal error that should trigger fallback.
func IsFatalError(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
