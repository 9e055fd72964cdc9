package api

import (
	"log/slog"
	"net/http"

	"voiceguide/pkg/guide"
	"voiceguide/pkg/model"
	"voiceguide/pkg/store"
	"voiceguide/pkg/tour"
)

// GuideHandler serves guide metadata and exports.
type GuideHandler struct {
	source  guide.Source
	catalog string
	history store.GuideSourceStore
	session *tour.Session
}

// NewGuideHandler creates a new GuideHandler. history may be nil.
func NewGuideHandler(src guide.Source, catalogPath string, history store.GuideSourceStore, s *tour.Session) *GuideHandler {
	return &GuideHandler{source: src, catalog: catalogPath, history: history, session: s}
}

// CatalogResponse lists published guides and the guides loaded before.
type CatalogResponse struct {
	Guides []model.CatalogEntry `json:"guides"`
	Recent []store.GuideSource  `json:"recent"`
}

// HandleLanguages handles GET /api/guide/languages
func (h *GuideHandler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.source.Languages(r.Context())
	if err != nil {
		writeError(w, loadStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current":   h.session.Language(),
		"languages": langs,
	})
}

// HandleCatalog handles GET /api/guide/catalog
func (h *GuideHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := guide.LoadCatalog(h.catalog)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	resp := CatalogResponse{Guides: entries, Recent: []store.GuideSource{}}
	if h.history != nil {
		recent, err := h.history.ListGuideSources(r.Context())
		if err != nil {
			slog.Warn("Failed to list guide sources", "error", err)
		} else if recent != nil {
			resp.Recent = recent
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleExport handles GET /api/guide/export?format=base|gist
func (h *GuideHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	g := h.session.Guide()
	if g == nil {
		http.Error(w, "no guide loaded", http.StatusNotFound)
		return
	}

	var (
		body any
		name string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "base":
		body, name = guide.ExportBase(g), "poi-base.json"
	case "gist":
		body, name = guide.ExportGist(g), "guide.json"
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	writeJSON(w, http.StatusOK, body)
}
