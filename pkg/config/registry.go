package config

// Persistent state keys (Registry)
const (
	KeyLanguage = "guide_language"
	KeyGistID   = "guide_gist_id"
	KeyMode     = "position_mode"
	KeyVolume   = "audio_volume"
	KeyEngine   = "tts_engine"
)
