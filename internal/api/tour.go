package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"voiceguide/pkg/config"
	"voiceguide/pkg/guide"
	"voiceguide/pkg/position"
	"voiceguide/pkg/tour"
)

// TourHandler serves the session state and controls.
type TourHandler struct {
	session *tour.Session
	prefs   config.Provider
}

// NewTourHandler creates a new TourHandler. prefs may be nil.
func NewTourHandler(s *tour.Session, prefs config.Provider) *TourHandler {
	return &TourHandler{session: s, prefs: prefs}
}

// ControlRequest is a narration command.
type ControlRequest struct {
	Action string `json:"action"` // "play", "pause", "stop"
}

// ModeRequest switches the position source.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// SelectRequest visits a POI in simulated mode.
type SelectRequest struct {
	ID string `json:"id"`
}

// LanguageRequest switches the guide language.
type LanguageRequest struct {
	Language string `json:"language"`
}

// HandleSnapshot handles GET /api/tour
func (h *TourHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// HandlePOIs handles GET /api/pois
func (h *TourHandler) HandlePOIs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.POIs())
}

// HandleControl handles POST /api/tour/control
func (h *TourHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	var req ControlRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "play":
		h.session.Play()
	case "pause":
		h.session.Pause()
	case "stop":
		h.session.Stop()
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	slog.Debug("Tour control", "action", req.Action)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "state": h.session.Snapshot().Narration})
}

// HandleMode handles POST /api/tour/mode
func (h *TourHandler) HandleMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	mode, err := position.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.session.SetMode(mode); err != nil {
		// The session fell back to simulated mode.
		writeJSON(w, http.StatusConflict, map[string]string{
			"status":  "error",
			"message": h.session.Snapshot().Status,
			"mode":    string(h.session.Mode()),
		})
		return
	}
	if h.prefs != nil {
		if err := h.prefs.SetMode(r.Context(), string(mode)); err != nil {
			slog.Error("Failed to persist mode", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": string(mode)})
}

// HandleSelect handles POST /api/tour/select
func (h *TourHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch err := h.session.SelectPOI(req.ID); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "active": h.session.Snapshot().ActivePOI})
	case errors.Is(err, tour.ErrNotSimulated):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, tour.ErrUnknownPOI):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

// HandleLanguage handles POST /api/tour/language
func (h *TourHandler) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := decodeBody(r, &req); err != nil || req.Language == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := guide.CheckLanguage(req.Language); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.session.SetLanguage(r.Context(), req.Language); err != nil {
		status := loadStatus(err)
		if errors.Is(err, guide.ErrNotFound) {
			// not one of the guide's languages
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	if h.prefs != nil {
		if err := h.prefs.SetLanguage(r.Context(), req.Language); err != nil {
			slog.Error("Failed to persist language", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "language": req.Language})
}

// HandleReload handles POST /api/tour/reload
func (h *TourHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	lang := h.session.Language()
	if err := h.session.LoadGuide(r.Context(), lang); err != nil {
		writeError(w, loadStatus(err), err)
		return
	}
	snap := h.session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"guide":  snap.GuideName,
		"pois":   fmt.Sprint(len(snap.POIs)),
	})
}

func loadStatus(err error) int {
	switch {
	case errors.Is(err, guide.ErrInvalidLanguage):
		return http.StatusBadRequest
	case errors.Is(err, guide.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, guide.ErrLoad):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
