package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverage(t *testing.T) {
	assert.Equal(t, time.Duration(0), average(nil))
	assert.Equal(t, 2*time.Millisecond, average([]time.Duration{time.Millisecond, 3 * time.Millisecond}))
}

func TestMeasureLatency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	ok := measureLatency(srv.URL + "/health")
	require.NoError(t, ok.Error)
	assert.Equal(t, http.StatusOK, ok.StatusCode)
	assert.Positive(t, ok.Total)

	missing := measureLatency(srv.URL + "/missing")
	assert.Error(t, missing.Error)
}

func TestBenchmarkWalk(t *testing.T) {
	var (
		mu       sync.Mutex
		selected []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pois":
			_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "a", "name": "Alpha"}, {"id": "b", "name": "Beta"}})
		case "/api/tour/select":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			selected = append(selected, body["id"])
			mu.Unlock()
		case "/api/tour/mode", "/api/tour/control":
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	require.NoError(t, benchmarkWalk(srv.URL))
	assert.Equal(t, []string{"a", "b"}, selected)
}
