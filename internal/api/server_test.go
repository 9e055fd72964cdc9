package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide/pkg/config"
	"voiceguide/pkg/guide"
	"voiceguide/pkg/model"
	"voiceguide/pkg/narration"
	"voiceguide/pkg/position"
	"voiceguide/pkg/position/remote"
	"voiceguide/pkg/speech"
	"voiceguide/pkg/tour"
	"voiceguide/pkg/tracker"
)

type testAPI struct {
	srv     *httptest.Server
	session *tour.Session
	hub     *remote.Hub
	mapS    *MapState
	stream  *Stream
	out     *speech.Silent
	dir     string
}

func writeFile(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func guideDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "granada")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeFile(t, dir, "languages.json", map[string]string{"en": "English", "es": "Español"})
	writeFile(t, dir, "poi-base.json", []model.BasePOI{
		{ID: "alhambra", Lat: 37.1761, Lon: -3.5881},
		{ID: "cathedral", Lat: 37.1764, Lon: -3.5995},
	})
	writeFile(t, dir, "poi-en.json", []model.POIText{
		{ID: "alhambra", Name: "Alhambra", Description: "Palace and fortress."},
		{ID: "cathedral", Name: "Cathedral", Description: "Renaissance church."},
	})
	writeFile(t, dir, "poi-es.json", []model.POIText{
		{ID: "alhambra", Name: "La Alhambra", Description: "Palacio y fortaleza."},
	})
	return dir
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	a := &testAPI{hub: remote.NewHub(), out: speech.NewSilent(2.5, 0.8)}
	a.stream = NewStream(a.hub, func() any { return a.session.Snapshot() })
	a.mapS = NewMapState(a.stream)

	a.dir = guideDir(t)
	src := guide.NewFileSource(a.dir)
	ctrl := narration.NewController(a.out, narration.NewTranscript(false, 0, nil))
	a.session = tour.NewSession(ctrl, a.mapS, src, a.hub, tour.Options{
		Threshold: 20,
		Composer:  &narration.Composer{Intros: false},
	})
	stop := a.stream.Follow(a.session)
	require.NoError(t, a.session.LoadGuide(context.Background(), "en"))
	require.NoError(t, a.session.SetMode(position.Simulated))

	cfg := config.DefaultConfig()
	prefs := config.NewProvider(cfg, nil)
	a.srv = httptest.NewServer(NewServer("", Handlers{
		Config: NewConfigHandler(prefs),
		Tour:   NewTourHandler(a.session, prefs),
		Guide:  NewGuideHandler(src, filepath.Join(t.TempDir(), "guides.json"), nil, a.session),
		Map:    NewMapHandler(a.mapS, a.session),
		Audio:  NewAudioHandler(a.out, nil),
		Stats:  NewStatsHandler(tracker.New(), a.session, a.stream),
		Stream: a.stream,
	}, "", nil).Handler)

	t.Cleanup(func() {
		a.srv.Close()
		stop()
		a.session.Close()
	})
	return a
}

func (a *testAPI) post(t *testing.T, path string, body any) (int, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(a.srv.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (a *testAPI) get(t *testing.T, path string, v any) int {
	t.Helper()
	resp, err := http.Get(a.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealthAndVersion(t *testing.T) {
	a := newTestAPI(t)

	resp, err := http.Get(a.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var v map[string]string
	assert.Equal(t, http.StatusOK, a.get(t, "/api/version", &v))
	assert.NotEmpty(t, v["version"])
}

func TestSelectAndSnapshot(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.post(t, "/api/tour/select", SelectRequest{ID: "alhambra"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alhambra", body["active"])

	var snap tour.Snapshot
	require.Equal(t, http.StatusOK, a.get(t, "/api/tour", &snap))
	assert.Equal(t, "alhambra", snap.ActivePOI)
	assert.Equal(t, []string{"alhambra"}, snap.Visited)
	assert.Equal(t, position.Simulated, snap.Mode)

	var pois []tour.POIView
	require.Equal(t, http.StatusOK, a.get(t, "/api/pois", &pois))
	require.Len(t, pois, 2)
	assert.True(t, pois[0].Visited)
	assert.True(t, pois[0].Active)
	assert.False(t, pois[1].Visited)

	var view MapView
	require.Equal(t, http.StatusOK, a.get(t, "/api/map/state", &view))
	assert.Equal(t, []string{"alhambra"}, view.Highlighted)
	require.NotNil(t, view.User)
	assert.Equal(t, 37.1761, view.User.Lat)

	code, _ = a.post(t, "/api/tour/select", SelectRequest{ID: "nowhere"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestControl(t *testing.T) {
	a := newTestAPI(t)
	_, _ = a.post(t, "/api/tour/select", SelectRequest{ID: "cathedral"})

	tests := []struct {
		action string
		status int
	}{
		{"pause", http.StatusOK},
		{"play", http.StatusOK},
		{"stop", http.StatusOK},
		{"rewind", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			code, _ := a.post(t, "/api/tour/control", ControlRequest{Action: tt.action})
			assert.Equal(t, tt.status, code)
		})
	}

	snap := a.session.Snapshot()
	assert.Empty(t, snap.ActivePOI, "stop forgets the active POI")
	assert.Equal(t, "idle", snap.Narration)
	assert.Empty(t, a.mapS.View().Highlighted)
}

func TestModeAndSelectRequiresSimulated(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.post(t, "/api/tour/mode", ModeRequest{Mode: "live"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "live", body["mode"])

	code, _ = a.post(t, "/api/tour/select", SelectRequest{ID: "alhambra"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.post(t, "/api/tour/mode", ModeRequest{Mode: "teleport"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLanguageAndReload(t *testing.T) {
	a := newTestAPI(t)
	_, _ = a.post(t, "/api/tour/select", SelectRequest{ID: "alhambra"})

	code, _ := a.post(t, "/api/tour/language", LanguageRequest{Language: "es"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "La Alhambra", a.session.Guide().Find("alhambra").Name)
	assert.True(t, a.session.Visited("alhambra"), "language switch keeps progress")

	code, _ = a.post(t, "/api/tour/language", LanguageRequest{Language: "de"})
	assert.Equal(t, http.StatusBadRequest, code, "not one of the guide's languages")
	assert.Equal(t, "es", a.session.Language())

	code, _ = a.post(t, "/api/tour/reload", nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, a.session.Visited("alhambra"), "reload starts over")
}

func TestLanguage_RejectsCodesOutsideGuide(t *testing.T) {
	a := newTestAPI(t)

	// a readable guide text file next to the guide directory
	writeFile(t, filepath.Dir(a.dir), "secret.json", []model.POIText{{ID: "alhambra", Name: "Leaked"}})

	for _, lang := range []string{"../../secret", "..", "en/../es", `en\x`, "en_US", "en.json"} {
		t.Run(lang, func(t *testing.T) {
			code, _ := a.post(t, "/api/tour/language", LanguageRequest{Language: lang})
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "en", a.session.Language())
			assert.Equal(t, "Alhambra", a.session.Guide().Find("alhambra").Name)
		})
	}
}

func TestGuideEndpoints(t *testing.T) {
	a := newTestAPI(t)

	var langs struct {
		Current   string               `json:"current"`
		Languages []model.LanguageInfo `json:"languages"`
	}
	require.Equal(t, http.StatusOK, a.get(t, "/api/guide/languages", &langs))
	assert.Equal(t, "en", langs.Current)
	assert.Len(t, langs.Languages, 2)

	var catalog CatalogResponse
	require.Equal(t, http.StatusOK, a.get(t, "/api/guide/catalog", &catalog))
	assert.Empty(t, catalog.Guides)

	var base []model.BasePOI
	require.Equal(t, http.StatusOK, a.get(t, "/api/guide/export?format=base", &base))
	assert.Equal(t, model.BasePOI{ID: "alhambra", Lat: 37.1761, Lon: -3.5881}, base[0])

	var gist guide.GistGuide
	require.Equal(t, http.StatusOK, a.get(t, "/api/guide/export?format=gist", &gist))
	assert.Equal(t, []string{"alhambra", "cathedral"}, gist.TourRoute)

	assert.Equal(t, http.StatusBadRequest, a.get(t, "/api/guide/export?format=kml", nil))
}

func TestGeoJSON(t *testing.T) {
	a := newTestAPI(t)
	_, _ = a.post(t, "/api/tour/select", SelectRequest{ID: "cathedral"})

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.Equal(t, http.StatusOK, a.get(t, "/api/map/geojson", &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3, "two POIs and one leg")
	assert.Equal(t, true, fc.Features[1].Properties["active"])
	assert.Equal(t, true, fc.Features[2].Properties["visited"])
}

func TestVolume(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.post(t, "/api/audio/volume", AudioVolumeRequest{Volume: 0.3})
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 0.3, body["volume"], 1e-9)

	code, _ = a.post(t, "/api/audio/volume", AudioVolumeRequest{Volume: 1.5})
	assert.Equal(t, http.StatusBadRequest, code)

	var v map[string]float64
	require.Equal(t, http.StatusOK, a.get(t, "/api/audio/volume", &v))
	assert.InDelta(t, 0.3, v["volume"], 1e-9)
}

func TestConfigAndStats(t *testing.T) {
	a := newTestAPI(t)

	var cfg ConfigResponse
	require.Equal(t, http.StatusOK, a.get(t, "/api/config", &cfg))
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 20.0, cfg.ProximityThreshold)
	assert.Equal(t, int64(30), cfg.TypewriterMS)

	var stats StatsResponse
	require.Equal(t, http.StatusOK, a.get(t, "/api/stats", &stats))
	assert.Equal(t, 2, stats.Tracking.POIs)
	assert.Equal(t, 0, stats.Tracking.Visited)
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ && (match == nil || match(msg.Data)) {
			return msg.Data
		}
	}
}

func TestStream_LivePositions(t *testing.T) {
	a := newTestAPI(t)
	require.NoError(t, a.session.SetMode(position.Live))

	url := "ws" + strings.TrimPrefix(a.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := readUntil(t, conn, "snapshot", nil)
	assert.Contains(t, string(hello), `"mode":"live"`)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "position", "lat": 37.1761, "lon": -3.5881, "accuracy": 5}))
	entered := readUntil(t, conn, "event", func(d json.RawMessage) bool {
		return strings.Contains(string(d), `"type":"entered"`)
	})
	assert.Contains(t, string(entered), `"poi_id":"alhambra"`)
	assert.True(t, a.session.Visited("alhambra"))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "error", "code": 1}))
	status := readUntil(t, conn, "event", func(d json.RawMessage) bool {
		return strings.Contains(string(d), `"type":"status"`) && strings.Contains(string(d), "denied")
	})
	assert.Contains(t, string(status), "User denied the request for Geolocation.")
}

func TestMapState_Highlights(t *testing.T) {
	m := NewMapState(nil)
	m.Highlight("a")
	m.Highlight("b")
	m.Highlight("a")
	m.Unhighlight("a")
	m.Unhighlight("zz")

	v := m.View()
	assert.Equal(t, []string{"b"}, v.Highlighted)
	assert.Nil(t, v.User)
	assert.NotNil(t, v.Legs)
}
