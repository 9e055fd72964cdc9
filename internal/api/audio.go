package api

import (
	"log/slog"
	"net/http"

	"voiceguide/pkg/config"
)

// Volume is the speech output level.
type Volume interface {
	SetVolume(vol float64)
	Volume() float64
}

// AudioHandler handles the volume endpoints.
type AudioHandler struct {
	out   Volume
	prefs config.Provider
}

// NewAudioHandler creates a new AudioHandler. prefs may be nil.
func NewAudioHandler(out Volume, prefs config.Provider) *AudioHandler {
	return &AudioHandler{out: out, prefs: prefs}
}

// AudioVolumeRequest represents a volume change request.
type AudioVolumeRequest struct {
	Volume float64 `json:"volume"`
}

// HandleGetVolume handles GET /api/audio/volume
func (h *AudioHandler) HandleGetVolume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"volume": h.out.Volume()})
}

// HandleVolume handles POST /api/audio/volume
func (h *AudioHandler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	var req AudioVolumeRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Volume < 0 || req.Volume > 1 {
		http.Error(w, "volume must be within [0, 1]", http.StatusBadRequest)
		return
	}

	h.out.SetVolume(req.Volume)

	if h.prefs != nil {
		if err := h.prefs.SetVolume(r.Context(), req.Volume); err != nil {
			slog.Error("Failed to persist volume", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]float64{"volume": h.out.Volume()})
}
