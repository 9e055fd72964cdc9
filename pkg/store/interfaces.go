package store

import (
	"context"
	"time"
)

// CacheStore handles generic key-value caching.
type CacheStore interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	HasCache(ctx context.Context, key string) (bool, error)
	SetCache(ctx context.Context, key string, val []byte) error
	ListCacheKeys(ctx context.Context, prefix string) ([]string, error)
}

// StateStore handles persistent user preferences.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// GuideSource describes where a guide was last loaded from.
type GuideSource struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"` // "file" or "gist"
	Location  string    `json:"location"`
	Languages []string  `json:"languages"`
	POICount  int       `json:"poi_count"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// GuideSourceStore remembers loaded guides for the catalog view.
type GuideSourceStore interface {
	SaveGuideSource(ctx context.Context, src *GuideSource) error
	ListGuideSources(ctx context.Context) ([]GuideSource, error)
}
