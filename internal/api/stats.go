package api

import (
	"net/http"
	"runtime"
	"sync"

	"voiceguide/pkg/tour"
	"voiceguide/pkg/tracker"
)

// StatsHandler reports provider usage and the tour progress.
type StatsHandler struct {
	tracker *tracker.Tracker
	session *tour.Session
	stream  *Stream

	mu     sync.Mutex
	maxMem uint64
}

func NewStatsHandler(t *tracker.Tracker, s *tour.Session, stream *Stream) *StatsHandler {
	return &StatsHandler{tracker: t, session: s, stream: stream}
}

type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	HitRate     int64 `json:"hit_rate"`
}

type ServerStats struct {
	MemoryMB    uint64 `json:"memory_mb"`
	MemoryMaxMB uint64 `json:"memory_max_mb"`
	Goroutines  int    `json:"goroutines"`
}

type TrackingStats struct {
	POIs    int `json:"pois"`
	Visited int `json:"visited"`
	Clients int `json:"clients"`
}

type StatsResponse struct {
	Server    ServerStats                 `json:"server"`
	Tracking  TrackingStats               `json:"tracking"`
	Providers map[string]ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	resp := StatsResponse{
		Server: h.serverStats(),
		Tracking: TrackingStats{
			POIs:    len(snap.POIs),
			Visited: len(snap.Visited),
		},
		Providers: make(map[string]ProviderStatsDTO),
	}
	if h.stream != nil {
		resp.Tracking.Clients = h.stream.Clients()
	}

	for provider, stats := range h.tracker.Snapshot() {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:   stats.CacheHits,
			CacheMisses: stats.CacheMisses,
			APISuccess:  stats.APISuccess,
			APIFailures: stats.APIFailures,
			HitRate:     hitRate,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *StatsHandler) serverStats() ServerStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	h.mu.Lock()
	defer h.mu.Unlock()
	if ms.Sys > h.maxMem {
		h.maxMem = ms.Sys
	}
	return ServerStats{
		MemoryMB:    bToMb(ms.Sys),
		MemoryMaxMB: bToMb(h.maxMem),
		Goroutines:  runtime.NumGoroutine(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
