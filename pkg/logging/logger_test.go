package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide/pkg/config"
	"voiceguide/pkg/model"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")
	eventLog := filepath.Join(tempDir, "events.log")

	// A previous run's log must be rotated to .old
	require.NoError(t, os.WriteFile(serverLog, []byte("previous run\n"), 0o644))

	cfg := &config.LogConfig{
		Server:   config.LogSettings{Path: serverLog, Level: "DEBUG"},
		Requests: config.LogSettings{Path: requestLog, Level: "INFO"},
		Events:   config.LogSettings{Path: eventLog},
	}

	cleanup, err := Init(cfg)
	require.NoError(t, err)
	defer cleanup()
	defer SetEventLogPath("")

	assert.FileExists(t, serverLog)
	assert.FileExists(t, requestLog)
	assert.NotNil(t, RequestLogger)

	old, err := os.ReadFile(serverLog + ".old")
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(old))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "events.log")
	SetEventLogPath(path)
	defer SetEventLogPath("")

	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	LogEvent(&model.TourEvent{Type: model.EventEntered, POIID: "p1", Title: "Old Bridge", Summary: "12.3 m", Timestamp: ts})
	LogEvent(&model.TourEvent{Type: model.EventExited, Title: "Left all areas", Timestamp: ts})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2024-05-01 10:30:00] [entered] Old Bridge - 12.3 m", lines[0])
	assert.Equal(t, "[2024-05-01 10:30:00] [exited] Left all areas", lines[1])
	assert.Equal(t, lines[1], GlobalEventCapture.GetLastLine())
}

func TestLogEvent_NoPath(t *testing.T) {
	SetEventLogPath("")
	assert.NotPanics(t, func() {
		LogEvent(&model.TourEvent{Type: model.EventStatus, Title: "ignored"})
	})
}

func TestLogCaptureWriter(t *testing.T) {
	w := NewLogCaptureWriter(2)
	assert.Equal(t, "", w.GetLastLine())

	_, _ = w.Write([]byte("one\n"))
	_, _ = w.Write([]byte("two\n"))
	_, _ = w.Write([]byte("three\n"))

	assert.Equal(t, "three", w.GetLastLine())
	assert.Equal(t, []string{"two", "three"}, w.Lines())
}
