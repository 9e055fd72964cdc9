package api

import (
	"net/http"

	"voiceguide/pkg/config"
)

// ConfigHandler reports the effective settings.
type ConfigHandler struct {
	cfgProv config.Provider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg config.Provider) *ConfigHandler {
	return &ConfigHandler{cfgProv: cfg}
}

// ConfigResponse represents the config API response.
type ConfigResponse struct {
	Language           string  `json:"language"`
	Mode               string  `json:"mode"`
	Volume             float64 `json:"volume"`
	TTSEngine          string  `json:"tts_engine"`
	GistID             string  `json:"gist_id,omitempty"`
	Watcher            string  `json:"watcher"`
	ProximityThreshold float64 `json:"proximity_threshold_m"`
	IntroPhrases       bool    `json:"intro_phrases"`
	Typewriter         bool    `json:"typewriter"`
	TypewriterMS       int64   `json:"typewriter_interval_ms"`
	RouteProvider      string  `json:"route_provider"`
}

// HandleConfig handles GET /api/config
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app := h.cfgProv.AppConfig()
	writeJSON(w, http.StatusOK, ConfigResponse{
		Language:           h.cfgProv.Language(ctx),
		Mode:               h.cfgProv.Mode(ctx),
		Volume:             h.cfgProv.Volume(ctx),
		TTSEngine:          h.cfgProv.Engine(ctx),
		GistID:             h.cfgProv.GistID(ctx),
		Watcher:            app.Position.Watcher,
		ProximityThreshold: float64(app.Tour.ProximityThreshold),
		IntroPhrases:       app.Tour.IntroPhrases,
		Typewriter:         app.Tour.Typewriter,
		TypewriterMS:       app.Tour.TypewriterInterval.Std().Milliseconds(),
		RouteProvider:      app.Route.Provider,
	})
}
