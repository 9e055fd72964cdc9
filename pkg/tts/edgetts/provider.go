// Package edgetts speaks through the Microsoft Edge read-aloud websocket service.
package edgetts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voiceguide/pkg/tracker"
	"voiceguide/pkg/tts"
)

const trackerName = "edge-tts"

// Endpoint holds the connection parameters of the service. They are not
// published and must come from the environment (or a .env file).
type Endpoint struct {
	BaseURL            string `env:"EDGE_TTS_BASE_URL,required,notEmpty"`
	Origin             string `env:"EDGE_TTS_ORIGIN,required,notEmpty"`
	UserAgent          string `env:"EDGE_TTS_USER_AGENT,required,notEmpty"`
	TrustedClientToken string `env:"EDGE_TTS_TRUSTED_CLIENT_TOKEN,required,notEmpty"`
	SecMSGecVersion    string `env:"EDGE_TTS_SEC_MS_GEC_VERSION,required,notEmpty"`
}

// LoadEndpoint reads the endpoint from the environment.
func LoadEndpoint() (Endpoint, error) {
	var e Endpoint
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("edge tts endpoint: %w", err)
	}
	return e, nil
}

// Provider implements tts.Provider for Microsoft Edge TTS.
type Provider struct {
	endpoint Endpoint
	tracker  *tracker.Tracker
}

// NewProvider creates a new Edge TTS provider.
func NewProvider(e Endpoint, t *tracker.Tracker) *Provider {
	return &Provider{endpoint: e, tracker: t}
}

// Synthesize generates an .mp3 file using Edge TTS.
func (p *Provider) Synthesize(ctx context.Context, text, voice, locale, outputPath string) (string, error) {
	if locale == "" {
		locale = tts.DefaultLocale
	}
	if voice == "" {
		voice = defaultVoice(locale)
	}

	fullPath := outputPath
	if !strings.HasSuffix(strings.ToLower(fullPath), ".mp3") {
		fullPath += ".mp3"
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	conn, err := p.dial(ctx)
	if err != nil {
		p.track(false)
		return "", err
	}
	defer conn.Close()

	if err := p.sendConfig(conn); err != nil {
		return "", err
	}

	ssml := tts.BuildSSML(locale, voice, text)
	requestID := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := p.sendSSML(conn, ssml, requestID); err != nil {
		return "", err
	}

	if err := p.consumeResponses(ctx, conn, file); err != nil {
		tts.Log("EDGETTS", locale, text, 0, err)
		p.track(false)
		return "", err
	}

	tts.Log("EDGETTS", locale, text, 200, nil)
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

func (p *Provider) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Origin", p.endpoint.Origin)
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")
	header.Set("User-Agent", p.endpoint.UserAgent)
	header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	header.Set("Accept-Language", "en-US,en;q=0.9")

	muid := strings.ReplaceAll(uuid.New().String(), "-", "")
	header.Set("Cookie", fmt.Sprintf("muid=%s", muid))

	url := fmt.Sprintf("%s?TrustedClientToken=%s&Sec-MS-GEC=%s&Sec-MS-GEC-Version=%s",
		p.endpoint.BaseURL, p.endpoint.TrustedClientToken, p.generateSecMSGec(), p.endpoint.SecMSGecVersion)

	var dialErr error
	for i := 0; i < 3; i++ {
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
		if err == nil {
			return conn, nil
		}
		dialErr = err
		if resp != nil {
			slog.Warn("EdgeTTS: handshake failure", "status_code", resp.StatusCode)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("websocket dial failed after retries: %w", dialErr)
}

// generateSecMSGec derives the rolling access token: Windows file-time ticks
// rounded down to five minutes, concatenated with the client token, SHA-256.
func (p *Provider) generateSecMSGec() string {
	ticks := float64(time.Now().Unix()) + 11644473600
	ticks -= float64(int64(ticks) % 300)
	ticks *= 1e7

	hash := sha256.Sum256([]byte(fmt.Sprintf("%.0f%s", ticks, p.endpoint.TrustedClientToken)))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

func (p *Provider) sendConfig(conn *websocket.Conn) error {
	configMsg := "Content-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n{\"context\":{\"synthesis\":{\"audio\":{\"metadataoptions\":{\"sentenceBoundaryEnabled\":\"false\",\"wordBoundaryEnabled\":\"false\"},\"outputFormat\":\"audio-24khz-48kbitrate-mono-mp3\"}}}}"
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return fmt.Errorf("failed to send speech.config: %w", err)
	}
	return nil
}

func (p *Provider) sendSSML(conn *websocket.Conn, ssml, requestID string) error {
	ssmlMsg := fmt.Sprintf("X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nPath:ssml\r\n\r\n%s", requestID, ssml)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMsg)); err != nil {
		return fmt.Errorf("failed to send ssml: %w", err)
	}
	return nil
}

func (p *Provider) consumeResponses(ctx context.Context, conn *websocket.Conn, file *os.File) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message failed: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				return nil
			}
		case websocket.BinaryMessage:
			if err := p.handleBinaryMessage(data, file); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// handleBinaryMessage strips the length-prefixed header and appends the audio payload.
func (p *Provider) handleBinaryMessage(data []byte, file *os.File) error {
	if len(data) < 2 {
		return nil
	}
	headerLength := int(uint16(data[0])<<8 | uint16(data[1]))
	if len(data) < 2+headerLength {
		return nil
	}
	audioData := data[2+headerLength:]
	if len(audioData) > 0 {
		if _, err := file.Write(audioData); err != nil {
			return fmt.Errorf("write audio data failed: %w", err)
		}
	}
	return nil
}

var voices = []tts.Voice{
	{ID: "en-US-AvaMultilingualNeural", Name: "Ava (Multilingual)", Language: "en-US", IsNeural: true},
	{ID: "en-GB-SoniaNeural", Name: "Sonia (UK)", Language: "en-GB", IsNeural: true},
	{ID: "es-ES-ElviraNeural", Name: "Elvira (Spain)", Language: "es-ES", IsNeural: true},
	{ID: "fr-FR-VivienneMultilingualNeural", Name: "Vivienne (France)", Language: "fr-FR", IsNeural: true},
	{ID: "de-DE-SeraphinaMultilingualNeural", Name: "Seraphina (Germany)", Language: "de-DE", IsNeural: true},
	{ID: "zh-CN-XiaoxiaoNeural", Name: "Xiaoxiao (China)", Language: "zh-CN", IsNeural: true},
}

func defaultVoice(locale string) string {
	if v := tts.VoiceFor(voices, locale); v != "" {
		return v
	}
	return voices[0].ID
}

// Voices returns the neural voices used for the guide languages.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	out := make([]tts.Voice, len(voices))
	copy(out, voices)
	return out, nil
}
