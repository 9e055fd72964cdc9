package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"voiceguide/pkg/model"
	"voiceguide/pkg/narration"
)

// FileSource reads a guide from a directory holding languages.json,
// poi-base.json, poi-<lang>.json and optionally route.json and view.json.
type FileSource struct {
	dir  string
	name string
}

// NewFileSource reads the guide in dir. The guide is named after the directory.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir, name: filepath.Base(filepath.Clean(dir))}
}

func (s *FileSource) Kind() string     { return "file" }
func (s *FileSource) Location() string { return s.dir }

// Languages lists languages.json sorted by code.
func (s *FileSource) Languages(ctx context.Context) ([]model.LanguageInfo, error) {
	var names map[string]string
	if err := s.readJSON("languages.json", &names); err != nil {
		return nil, err
	}
	langs := make([]model.LanguageInfo, 0, len(names))
	for code, name := range names {
		langs = append(langs, model.LanguageInfo{Code: code, Name: name, Locale: narration.Locale(code)})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })
	return langs, nil
}

// Load merges poi-base.json with poi-<lang>.json. lang must be listed in
// languages.json.
func (s *FileSource) Load(ctx context.Context, lang string) (*model.Guide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := CheckLanguage(lang); err != nil {
		return nil, err
	}
	if err := s.listed(ctx, lang); err != nil {
		return nil, err
	}

	var base []model.BasePOI
	if err := s.readJSON("poi-base.json", &base); err != nil {
		return nil, err
	}
	var texts []model.POIText
	if err := s.readJSON(fmt.Sprintf("poi-%s.json", lang), &texts); err != nil {
		return nil, err
	}
	var route []string
	if err := s.readJSON("route.json", &route); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	g := Merge(s.name, lang, base, texts, route)

	var view model.View
	switch err := s.readJSON("view.json", &view); {
	case err == nil:
		g.View = view
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return g, nil
}

func (s *FileSource) listed(ctx context.Context, lang string) error {
	langs, err := s.Languages(ctx)
	if err != nil {
		return err
	}
	for _, l := range langs {
		if l.Code == lang {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not listed in languages.json", ErrNotFound, lang)
}

// Base returns poi-base.json as stored.
func (s *FileSource) Base() ([]model.BasePOI, error) {
	var base []model.BasePOI
	err := s.readJSON("poi-base.json", &base)
	return base, err
}

func (s *FileSource) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return loadErr(name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return loadErr(name, err)
	}
	return nil
}
