// Package tracker counts outbound calls and cache use per external provider.
package tracker

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Tracker tracks usage statistics per provider.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*counters
}

type counters struct {
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	apiSuccess  atomic.Int64
	apiFailures atomic.Int64
}

// ProviderStats is a point-in-time copy of one provider's counters.
type ProviderStats struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_failures"`
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*counters),
	}
}

func (t *Tracker) get(provider string) *counters {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &counters{}
	t.stats[provider] = s
	return s
}

func (t *Tracker) TrackCacheHit(provider string)   { t.get(provider).cacheHits.Add(1) }
func (t *Tracker) TrackCacheMiss(provider string)  { t.get(provider).cacheMisses.Add(1) }
func (t *Tracker) TrackAPISuccess(provider string) { t.get(provider).apiSuccess.Add(1) }
func (t *Tracker) TrackAPIFailure(provider string) { t.get(provider).apiFailures.Add(1) }

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ProviderStats, len(t.stats))
	for k, v := range t.stats {
		result[k] = ProviderStats{
			CacheHits:   v.cacheHits.Load(),
			CacheMisses: v.cacheMisses.Load(),
			APISuccess:  v.apiSuccess.Load(),
			APIFailures: v.apiFailures.Load(),
		}
	}
	return result
}

// Providers returns the tracked provider names in sorted order.
func (t *Tracker) Providers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.stats))
	for k := range t.stats {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Reset drops all counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = make(map[string]*counters)
}
