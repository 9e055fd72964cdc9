// Package azure speaks through the Azure Cognitive Services speech REST API.
package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"voiceguide/pkg/config"
	"voiceguide/pkg/tracker"
	"voiceguide/pkg/tts"
)

const trackerName = "azure-speech"

// Provider implements tts.Provider for Azure Speech.
type Provider struct {
	key     string
	voices  map[string]string
	client  *http.Client
	url     string
	tracker *tracker.Tracker
}

// NewProvider creates a new Azure Speech TTS provider.
func NewProvider(cfg config.AzureSpeechConfig, t *tracker.Tracker) *Provider {
	url := cfg.Endpoint
	if url == "" {
		url = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region)
	}
	return &Provider{
		key:     cfg.Key,
		voices:  cfg.Voices,
		client:  &http.Client{Timeout: 30 * time.Second},
		url:     url,
		tracker: t,
	}
}

func (p *Provider) voiceFor(locale, requested string) string {
	if requested != "" {
		return requested
	}
	if v, ok := p.voices[locale]; ok {
		return v
	}
	return ""
}

// Synthesize generates speech from text using Azure Speech.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, locale, outputPath string) (string, error) {
	if locale == "" {
		locale = tts.DefaultLocale
	}
	vid := p.voiceFor(locale, voiceID)
	if vid == "" {
		return "", fmt.Errorf("no azure voice configured for locale %s", locale)
	}

	ssml := tts.BuildSSML(locale, vid, text)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBufferString(ssml))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-160kbitrate-mono-mp3")
	req.Header.Set("User-Agent", "VoiceGuide")

	resp, err := p.client.Do(req)
	if err != nil {
		tts.Log("AZURE", locale, text, 0, err)
		p.track(false)
		return "", fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tts.Log("AZURE", locale, text, resp.StatusCode, nil)
		p.track(false)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(body) == 0 {
			body = []byte("[empty body]")
		}
		return "", tts.NewFatalError(resp.StatusCode,
			fmt.Sprintf("azure speech api error (status %d): %s", resp.StatusCode, body))
	}

	filename := outputPath
	if filepath.Ext(filename) != ".mp3" {
		filename += ".mp3"
	}
	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		p.track(false)
		return "", fmt.Errorf("failed to write audio to file: %w", err)
	}

	tts.Log("AZURE", locale, text, http.StatusOK, nil)
	p.track(true)
	return "mp3", nil
}

func (p *Provider) track(ok bool) {
	if p.tracker == nil {
		return
	}
	if ok {
		p.tracker.TrackAPISuccess(trackerName)
	} else {
		p.tracker.TrackAPIFailure(trackerName)
	}
}

// Voices returns the configured voice per locale.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	out := make([]tts.Voice, 0, len(p.voices))
	for locale, id := range p.voices {
		out = append(out, tts.Voice{ID: id, Name: id, Language: locale, IsNeural: true})
	}
	return out, nil
}
