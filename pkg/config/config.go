// Package config loads the guide service settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Request  RequestConfig  `yaml:"request"`
	Guide    GuideConfig    `yaml:"guide"`
	Tour     TourConfig     `yaml:"tour"`
	Position PositionConfig `yaml:"position"`
	TTS      TTSConfig      `yaml:"tts"`
	Route    RouteConfig    `yaml:"route"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address   string `yaml:"address" env:"VOICEGUIDE_ADDRESS"`
	StaticDir string `yaml:"static_dir" env:"VOICEGUIDE_STATIC_DIR"` // optional web client to serve at /
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Events   LogSettings `yaml:"events"`
	TTS      LogSettings `yaml:"tts"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path     string   `yaml:"path" env:"VOICEGUIDE_DB_PATH"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// GuideConfig selects the tour content.
type GuideConfig struct {
	Dir      string `yaml:"dir" env:"VOICEGUIDE_GUIDE_DIR"`
	Language string `yaml:"language" env:"VOICEGUIDE_LANGUAGE"`
	GistID   string `yaml:"gist_id" env:"VOICEGUIDE_GIST_ID"` // when set, the guide is fetched from this gist instead of Dir
	GistAPI  string `yaml:"gist_api"`
	Catalog  string `yaml:"catalog"`
}

// TourConfig holds the triggering and narration behavior.
type TourConfig struct {
	ProximityThreshold Distance `yaml:"proximity_threshold"`
	BreadcrumbSpacing  Distance `yaml:"breadcrumb_spacing"`
	IntroPhrases       bool     `yaml:"intro_phrases"`
	Typewriter         bool     `yaml:"typewriter"`
	TypewriterInterval Duration `yaml:"typewriter_interval"`
	Mode               string   `yaml:"mode"` // startup mode: live, simulated
}

// PositionConfig selects what feeds the live mode.
type PositionConfig struct {
	Watcher string       `yaml:"watcher" env:"VOICEGUIDE_POSITION_WATCHER"` // remote, walker
	Walker  WalkerConfig `yaml:"walker"`
}

// WalkerConfig drives the emulated walker that follows the tour route.
type WalkerConfig struct {
	Speed   float64  `yaml:"speed_mps"`
	Tick    Duration `yaml:"tick"`
	Dwell   Duration `yaml:"dwell"`
	Jitter  Distance `yaml:"jitter"`
	Loop    bool     `yaml:"loop"`
	StartAt string   `yaml:"start_at"` // POI id, empty for the first route stop
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Engine         string            `yaml:"engine" env:"VOICEGUIDE_TTS_ENGINE"`
	Volume         float64           `yaml:"volume"`
	CacheDir       string            `yaml:"cache_dir"`
	WordsPerSecond float64           `yaml:"words_per_second"` // pacing of the silent engine
	AzureSpeech    AzureSpeechConfig `yaml:"azure_speech"`
}

// AzureSpeechConfig holds settings for Azure Speech TTS.
type AzureSpeechConfig struct {
	Key      string            `yaml:"key" env:"AZURE_SPEECH_KEY"`
	Region   string            `yaml:"region" env:"AZURE_SPEECH_REGION"`
	Endpoint string            `yaml:"endpoint"`
	Voices   map[string]string `yaml:"voices"` // locale -> voice name
}

// RouteConfig selects how the walking route between stops is drawn.
type RouteConfig struct {
	Provider      string `yaml:"provider"` // straight, google-maps
	GoogleMapsKey string `yaml:"google_maps_key" env:"GOOGLE_MAPS_API_KEY"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1921",
		},
		Log: LogConfig{
			Server:   LogSettings{Path: "./logs/server.log", Level: "INFO"},
			Requests: LogSettings{Path: "./logs/requests.log", Level: "INFO"},
			Events:   LogSettings{Path: "./logs/events.log", Level: "INFO"},
			TTS:      LogSettings{Path: "./logs/tts.log", Level: "INFO"},
		},
		DB: DBConfig{
			Path:     "./data/voiceguide.db",
			CacheTTL: Duration(30 * Day),
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(1 * time.Second),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Guide: GuideConfig{
			Dir:      "./assets",
			Language: "en",
			GistAPI:  "https://api.github.com/gists",
			Catalog:  "./assets/guides.json",
		},
		Tour: TourConfig{
			ProximityThreshold: Distance(20),
			BreadcrumbSpacing:  Distance(10),
			IntroPhrases:       true,
			Typewriter:         true,
			TypewriterInterval: Duration(30 * time.Millisecond),
			Mode:               "simulated",
		},
		Position: PositionConfig{
			Watcher: "remote",
			Walker: WalkerConfig{
				Speed:  1.4,
				Tick:   Duration(1 * time.Second),
				Dwell:  Duration(20 * time.Second),
				Jitter: Distance(3),
				Loop:   false,
			},
		},
		TTS: TTSConfig{
			Engine:         "silent",
			Volume:         1.0,
			CacheDir:       "./data/audio",
			WordsPerSecond: 2.5,
			AzureSpeech: AzureSpeechConfig{
				Voices: map[string]string{
					"en-US": "en-US-AvaMultilingualNeural",
					"es-ES": "es-ES-ElviraNeural",
					"fr-FR": "fr-FR-DeniseNeural",
					"de-DE": "de-DE-KatjaNeural",
					"zh-CN": "zh-CN-XiaoxiaoNeural",
				},
			},
		},
		Route: RouteConfig{
			Provider: "straight",
		},
	}
}

// Load loads the configuration from the given path and applies environment overrides.
// If the file does not exist, it creates it with default values.
// Existing files are never rewritten, to preserve user formatting and comments.
// Environment values are applied after the file and are not saved.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var langCodeRe = regexp.MustCompile(`^[a-z]{2,3}$`)

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if !langCodeRe.MatchString(c.Guide.Language) {
		return fmt.Errorf("invalid guide.language %q: must be a lowercase language code (e.g. 'en', 'es')", c.Guide.Language)
	}
	if c.Tour.ProximityThreshold <= 0 {
		return fmt.Errorf("tour.proximity_threshold must be positive, got %v", float64(c.Tour.ProximityThreshold))
	}
	switch c.Tour.Mode {
	case "live", "simulated":
	default:
		return fmt.Errorf("invalid tour.mode %q: must be live or simulated", c.Tour.Mode)
	}
	switch c.Position.Watcher {
	case "remote", "walker":
	default:
		return fmt.Errorf("invalid position.watcher %q: must be remote or walker", c.Position.Watcher)
	}
	if c.TTS.Volume < 0 || c.TTS.Volume > 1 {
		return fmt.Errorf("tts.volume must be within [0, 1], got %v", c.TTS.Volume)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# VoiceGuide Configuration
# ------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)
# Secrets can be supplied through the environment or a .env file:
#   AZURE_SPEECH_KEY, AZURE_SPEECH_REGION, GOOGLE_MAPS_API_KEY, EDGE_TTS_*

`)
	data = append(header, data...)

	comments := []struct{ key, text string }{
		{"engine", "Options: silent, edge-tts, azure-speech, windows-sapi"},
		{"mode", "Options: live, simulated"},
		{"watcher", "Live position feed. Options: remote (browser websocket), walker (emulated walk along the tour route)"},
		{"provider", "Options: straight, google-maps"},
		{"gist_id", "Load the guide from a GitHub gist instead of dir"},
	}
	for _, c := range comments {
		re := regexp.MustCompile(`(?m)^(\s+)` + c.key + `:`)
		data = re.ReplaceAll(data, []byte("${1}# "+c.text+"\n${1}"+c.key+":"))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
