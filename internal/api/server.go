package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"voiceguide/pkg/version"
)

// Handlers groups everything the server routes to.
type Handlers struct {
	Config *ConfigHandler
	Tour   *TourHandler
	Guide  *GuideHandler
	Map    *MapHandler
	Audio  *AudioHandler
	Stats  *StatsHandler
	Stream *Stream
}

// NewServer creates and configures the HTTP server. staticDir, if set, is
// served at / as a single page app.
func NewServer(addr string, h Handlers, staticDir string, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health and Version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)
	if h.Config != nil {
		mux.HandleFunc("GET /api/config", h.Config.HandleConfig)
	}

	// 2. Tour
	mux.HandleFunc("GET /api/tour", h.Tour.HandleSnapshot)
	mux.HandleFunc("GET /api/pois", h.Tour.HandlePOIs)
	mux.HandleFunc("POST /api/tour/control", h.Tour.HandleControl)
	mux.HandleFunc("POST /api/tour/mode", h.Tour.HandleMode)
	mux.HandleFunc("POST /api/tour/select", h.Tour.HandleSelect)
	mux.HandleFunc("POST /api/tour/language", h.Tour.HandleLanguage)
	mux.HandleFunc("POST /api/tour/reload", h.Tour.HandleReload)

	// 3. Guide
	mux.HandleFunc("GET /api/guide/languages", h.Guide.HandleLanguages)
	mux.HandleFunc("GET /api/guide/catalog", h.Guide.HandleCatalog)
	mux.HandleFunc("GET /api/guide/export", h.Guide.HandleExport)

	// 4. Map
	mux.HandleFunc("GET /api/map/state", h.Map.HandleState)
	mux.HandleFunc("GET /api/map/geojson", h.Map.HandleGeoJSON)

	// 5. Audio
	if h.Audio != nil {
		mux.HandleFunc("GET /api/audio/volume", h.Audio.HandleGetVolume)
		mux.HandleFunc("POST /api/audio/volume", h.Audio.HandleVolume)
	}

	// 6. Stats and Logs
	mux.Handle("GET /api/stats", h.Stats)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)
	mux.HandleFunc("GET /api/log/events", handleEvents)

	// 7. Position stream
	mux.Handle("GET /ws", h.Stream)

	// 8. Shutdown
	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// Let the response flush first.
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	// 9. Web client
	if staticDir != "" {
		mux.Handle("/", http.FileServer(&spaFileSystem{root: http.Dir(staticDir)}))
	}

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
