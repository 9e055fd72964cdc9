package guide

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide/pkg/model"
)

func writeJSON(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func sampleDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "granada")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeJSON(t, dir, "languages.json", map[string]string{"en": "English", "es": "Español"})
	writeJSON(t, dir, "poi-base.json", []model.BasePOI{
		{ID: "alhambra", Lat: 37.1761, Lon: -3.5881},
		{ID: "cathedral", Lat: 37.1764, Lon: -3.5995},
		{ID: "broken", Lat: 137, Lon: 0},
		{ID: "alhambra", Lat: 1, Lon: 1},
		{ID: "mirador", Lat: 37.1810, Lon: -3.5925},
	})
	writeJSON(t, dir, "poi-en.json", []model.POIText{
		{ID: "alhambra", Name: "Alhambra", Description: "Palace and fortress."},
		{ID: "cathedral", Name: "Cathedral", Description: "Renaissance church."},
	})
	writeJSON(t, dir, "poi-es.json", []model.POIText{
		{ID: "alhambra", Name: "La Alhambra", Description: "Palacio y fortaleza."},
	})
	return dir
}

func TestMerge(t *testing.T) {
	base := []model.BasePOI{
		{ID: "a", Lat: 10, Lon: 10},
		{ID: "", Lat: 1, Lon: 1},
		{ID: "b", Lat: 20, Lon: -200},
		{ID: "c", Lat: 30, Lon: 30},
		{ID: "a", Lat: 40, Lon: 40},
	}
	texts := []model.POIText{{ID: "c", Name: "Gamma", Description: "third"}}

	g := Merge("test", "en", base, texts, []string{"c", "zz", "a"})

	require.Len(t, g.POIs, 2)
	assert.Equal(t, "a", g.POIs[0].ID)
	assert.Equal(t, "a", g.POIs[0].Name, "missing text falls back to the id")
	assert.Equal(t, 10.0, g.POIs[0].Lat, "first duplicate wins")
	assert.Equal(t, "Gamma", g.POIs[1].Name)
	assert.Equal(t, []string{"c", "a"}, g.TourRoute)
	assert.InDelta(t, 20.0, g.View.Lat, 1e-9)
	assert.InDelta(t, 20.0, g.View.Lon, 1e-9)
	assert.Equal(t, defaultZoom, g.View.Zoom)
}

func TestMerge_DefaultRouteFollowsBaseOrder(t *testing.T) {
	g := Merge("test", "en", []model.BasePOI{{ID: "x", Lat: 1, Lon: 1}, {ID: "y", Lat: 2, Lon: 2}}, nil, nil)
	assert.Equal(t, []string{"x", "y"}, g.TourRoute)
	assert.Equal(t, []*model.POI{g.POIs[0], g.POIs[1]}, RouteStops(g))
}

func TestFileSource_Load(t *testing.T) {
	src := NewFileSource(sampleDir(t))
	ctx := context.Background()

	g, err := src.Load(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, "granada", g.Name)
	assert.Equal(t, "en", g.Language)

	ids := make([]string, 0, len(g.POIs))
	for _, p := range g.POIs {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"alhambra", "cathedral", "mirador"}, ids)
	assert.Equal(t, "mirador", g.Find("mirador").Name)

	es, err := src.Load(ctx, "es")
	require.NoError(t, err)
	assert.Equal(t, "La Alhambra", es.Find("alhambra").Name)
	assert.Equal(t, "cathedral", es.Find("cathedral").Name)

	_, err = src.Load(ctx, "de")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileSource_RouteAndView(t *testing.T) {
	dir := sampleDir(t)
	writeJSON(t, dir, "route.json", []string{"mirador", "alhambra"})
	writeJSON(t, dir, "view.json", model.View{Lat: 37.177, Lon: -3.588, Zoom: 16})

	g, err := NewFileSource(dir).Load(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"mirador", "alhambra"}, g.TourRoute)
	assert.Equal(t, model.View{Lat: 37.177, Lon: -3.588, Zoom: 16}, g.View)
}

func TestFileSource_InvalidJSON(t *testing.T) {
	dir := sampleDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poi-en.json"), []byte("{not json"), 0o644))

	_, err := NewFileSource(dir).Load(context.Background(), "en")
	assert.ErrorIs(t, err, ErrLoad)
}

func TestFileSource_LoadStaysInDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "guide")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"languages.json", "poi-base.json", "poi-en.json"} {
		data, err := os.ReadFile(filepath.Join(sampleDir(t), name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	writeJSON(t, root, "secret.json", []model.POIText{{ID: "alhambra", Name: "Leaked"}})

	src := NewFileSource(dir)
	ctx := context.Background()

	_, err := src.Load(ctx, "../../../secret")
	assert.ErrorIs(t, err, ErrInvalidLanguage)

	// well formed, but not listed in languages.json
	writeJSON(t, dir, "poi-fr.json", []model.POIText{{ID: "alhambra", Name: "L'Alhambra"}})
	_, err = src.Load(ctx, "fr")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckLanguage(t *testing.T) {
	tests := []struct {
		code string
		ok   bool
	}{
		{"en", true},
		{"es", true},
		{"zh-Hans", true},
		{"pt-BR", true},
		{"", false},
		{"..", false},
		{"../../etc/secret", false},
		{"en/../es", false},
		{`en\x`, false},
		{"en_US", false},
		{"en.json", false},
		{"abcdefghi", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := CheckLanguage(tt.code)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidLanguage)
			}
		})
	}
}

func TestFileSource_Languages(t *testing.T) {
	langs, err := NewFileSource(sampleDir(t)).Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.LanguageInfo{
		{Code: "en", Name: "English", Locale: "en-US"},
		{Code: "es", Name: "Español", Locale: "es-ES"},
	}, langs)

	_, err = NewFileSource(t.TempDir()).Languages(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guides.json")

	entries, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Empty(t, entries)

	writeJSON(t, dir, "guides.json", []model.CatalogEntry{{Name: "Granada", GistID: "abc123"}})
	entries, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []model.CatalogEntry{{Name: "Granada", GistID: "abc123"}}, entries)

	require.NoError(t, os.WriteFile(path, []byte("[{"), 0o644))
	_, err = LoadCatalog(path)
	assert.ErrorIs(t, err, ErrLoad)
}

func TestExport(t *testing.T) {
	g, err := NewFileSource(sampleDir(t)).Load(context.Background(), "en")
	require.NoError(t, err)

	base := ExportBase(g)
	require.Len(t, base, 3)
	assert.Equal(t, model.BasePOI{ID: "alhambra", Lat: 37.1761, Lon: -3.5881}, base[0])

	gg := ExportGist(g)
	assert.Equal(t, g.View, gg.InitialView)
	assert.Equal(t, base, gg.PoiBaseData)
	assert.Equal(t, model.POIText{ID: "cathedral", Name: "Cathedral", Description: "Renaissance church."}, gg.POIs[1])
	assert.Equal(t, g.TourRoute, gg.TourRoute)

	// An exported gist document loads back into the same guide.
	back := Merge(g.Name, "en", gg.PoiBaseData, gg.POIs, gg.TourRoute)
	assert.Equal(t, g.POIs, back.POIs)
}
