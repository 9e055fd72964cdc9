package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestService_CheckChanged(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	past := time.Now().Add(-time.Hour)

	touch(t, filepath.Join(dir1, "poi-base.json"), past)
	s := NewService(dir1, dir2)

	_, ok := s.CheckChanged()
	assert.False(t, ok, "files older than the service are ignored")

	future := time.Now().Add(time.Minute)
	touch(t, filepath.Join(dir2, "notes.txt"), future)
	_, ok = s.CheckChanged()
	assert.False(t, ok, "only json files count")

	touch(t, filepath.Join(dir1, "poi-en.json"), future)
	touch(t, filepath.Join(dir2, "poi-es.json"), future.Add(time.Second))

	file, ok := s.CheckChanged()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir2, "poi-es.json"), file)

	_, ok = s.CheckChanged()
	assert.False(t, ok, "a change is reported once")

	touch(t, filepath.Join(dir1, "route.json"), future.Add(2*time.Second))
	file, ok = s.CheckChanged()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir1, "route.json"), file)
}

func TestService_MissingDir(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "missing"))
	_, ok := s.CheckChanged()
	assert.False(t, ok)
}

func TestService_Run(t *testing.T) {
	dir := t.TempDir()
	s := NewService(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan string, 1)
	go s.Run(ctx, 5*time.Millisecond, func(file string) { changed <- file })

	touch(t, filepath.Join(dir, "languages.json"), time.Now().Add(time.Minute))

	select {
	case file := <-changed:
		assert.Equal(t, filepath.Join(dir, "languages.json"), file)
	case <-time.After(2 * time.Second):
		t.Fatal("change not reported")
	}
}
