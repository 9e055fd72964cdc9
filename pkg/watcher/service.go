// Package watcher notices edits to the guide files on disk.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Service monitors guide directories for changed JSON files.
type Service struct {
	paths       []string
	mu          sync.Mutex
	lastChecked time.Time
}

// NewService creates a monitor for the given directories. Changes made
// before it was created are not reported.
func NewService(paths ...string) *Service {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Warn("Watcher: Directory does not exist", "path", path)
		}
	}
	return &Service{
		paths:       paths,
		lastChecked: time.Now(),
	}
}

// CheckChanged returns the newest guide file modified since the previous
// report, or ("", false) if nothing changed.
func (s *Service) CheckChanged() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		newestFile string
		newestTime time.Time
	)
	for _, path := range s.paths {
		entries, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if mod := info.ModTime(); mod.After(s.lastChecked) && mod.After(newestTime) {
				newestTime = mod
				newestFile = filepath.Join(path, entry.Name())
			}
		}
	}

	if newestFile == "" {
		return "", false
	}
	s.lastChecked = newestTime
	slog.Info("Watcher: Guide file changed", "file", newestFile)
	return newestFile, true
}

// Run polls every interval until ctx is done and calls onChange for each
// detected change.
func (s *Service) Run(ctx context.Context, interval time.Duration, onChange func(file string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if file, ok := s.CheckChanged(); ok {
				onChange(file)
			}
		}
	}
}
