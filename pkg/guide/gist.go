package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"voiceguide/pkg/model"
	"voiceguide/pkg/narration"
)

const gistFile = "guide.json"

// Fetcher is the HTTP surface used for gists (pkg/request.Client).
type Fetcher interface {
	Get(ctx context.Context, u, cacheKey string) ([]byte, error)
}

// GistGuide is the guide.json document stored in a gist.
type GistGuide struct {
	InitialView model.View      `json:"initialView"`
	PoiBaseData []model.BasePOI `json:"poiBaseData"`
	POIs        []model.POIText `json:"pois"`
	TourRoute   []string        `json:"tourRoute"`
}

type gistResponse struct {
	Description string `json:"description"`
	Files       map[string]struct {
		Content   string `json:"content"`
		Truncated bool   `json:"truncated"`
		RawURL    string `json:"raw_url"`
	} `json:"files"`
}

// GistSource loads a single-language guide published as a GitHub gist.
type GistSource struct {
	client Fetcher
	api    string
	id     string
}

// NewGistSource reads gist id from api (e.g. https://api.github.com/gists).
func NewGistSource(client Fetcher, api, id string) *GistSource {
	return &GistSource{client: client, api: strings.TrimRight(api, "/"), id: id}
}

func (s *GistSource) Kind() string     { return "gist" }
func (s *GistSource) Location() string { return s.id }

// Languages is always English: gist guides carry one set of texts.
func (s *GistSource) Languages(ctx context.Context) ([]model.LanguageInfo, error) {
	return []model.LanguageInfo{{Code: "en", Name: "English", Locale: narration.Locale("en")}}, nil
}

func (s *GistSource) Load(ctx context.Context, lang string) (*model.Guide, error) {
	if err := CheckLanguage(lang); err != nil {
		return nil, err
	}
	if lang != "en" {
		return nil, fmt.Errorf("%w: gist %s has no %q texts", ErrNotFound, s.id, lang)
	}
	gg, name, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	g := Merge(name, lang, gg.PoiBaseData, gg.POIs, gg.TourRoute)
	if gg.InitialView != (model.View{}) {
		g.View = gg.InitialView
	}
	return g, nil
}

func (s *GistSource) fetch(ctx context.Context) (*GistGuide, string, error) {
	// Gists are edited in place, so they are never served from the cache.
	body, err := s.client.Get(ctx, s.api+"/"+s.id, "")
	if err != nil {
		return nil, "", fmt.Errorf("fetch gist %s: %w", s.id, err)
	}
	var resp gistResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", loadErr("gist "+s.id, err)
	}
	file, ok := resp.Files[gistFile]
	if !ok {
		return nil, "", fmt.Errorf("%w: gist %s has no %s", ErrNotFound, s.id, gistFile)
	}

	content := []byte(file.Content)
	if file.Truncated && file.RawURL != "" {
		content, err = s.client.Get(ctx, file.RawURL, "")
		if err != nil {
			return nil, "", fmt.Errorf("fetch gist %s content: %w", s.id, err)
		}
	}

	var gg GistGuide
	if err := json.Unmarshal(content, &gg); err != nil {
		return nil, "", loadErr(gistFile, err)
	}
	name := resp.Description
	if name == "" {
		name = "gist " + s.id
	}
	return &gg, name, nil
}
