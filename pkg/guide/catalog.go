package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"voiceguide/pkg/model"
	"voiceguide/pkg/store"
)

// LoadCatalog reads guides.json. A missing file is an empty catalog.
func LoadCatalog(path string) ([]model.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.CatalogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var entries []model.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, loadErr("catalog", err)
	}
	return entries, nil
}

// Recorder remembers every successfully loaded guide in the store.
type Recorder struct {
	Source
	store store.GuideSourceStore
}

// Record wraps src. A nil store disables recording.
func Record(src Source, st store.GuideSourceStore) *Recorder {
	return &Recorder{Source: src, store: st}
}

func (r *Recorder) Load(ctx context.Context, lang string) (*model.Guide, error) {
	g, err := r.Source.Load(ctx, lang)
	if err != nil || r.store == nil {
		return g, err
	}

	var codes []string
	if langs, lerr := r.Source.Languages(ctx); lerr == nil {
		for _, l := range langs {
			codes = append(codes, l.Code)
		}
	}
	rec := &store.GuideSource{
		Name:      g.Name,
		Kind:      r.Kind(),
		Location:  r.Location(),
		Languages: codes,
		POICount:  len(g.POIs),
		LoadedAt:  time.Now(),
	}
	if serr := r.store.SaveGuideSource(ctx, rec); serr != nil {
		slog.Warn("Guide: cannot record source", "location", r.Location(), "error", serr)
	}
	return g, nil
}
