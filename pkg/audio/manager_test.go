package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m := New(1.0, false)
	assert.NotNil(t, m)
	assert.Equal(t, 1.0, m.Volume())
	assert.Equal(t, 0.4, New(0.4, false).Volume())
}

func TestManager_StateAccessors(t *testing.T) {
	tests := []struct {
		name   string
		action func(*Manager)
		check  func(*testing.T, *Manager)
	}{
		{
			name:   "Default State",
			action: func(m *Manager) {},
			check: func(t *testing.T, m *Manager) {
				assert.Equal(t, 1.0, m.Volume())
				assert.False(t, m.IsPlaying())
				assert.False(t, m.IsBusy())
				assert.False(t, m.IsPaused())
				assert.Zero(t, m.Remaining())
			},
		},
		{
			name:   "Volume Control",
			action: func(m *Manager) { m.SetVolume(0.5) },
			check: func(t *testing.T, m *Manager) {
				assert.Equal(t, 0.5, m.Volume())
			},
		},
		{
			name:   "Volume Clamping Low",
			action: func(m *Manager) { m.SetVolume(-0.5) },
			check: func(t *testing.T, m *Manager) {
				assert.Equal(t, 0.0, m.Volume())
			},
		},
		{
			name:   "Volume Clamping High",
			action: func(m *Manager) { m.SetVolume(1.5) },
			check: func(t *testing.T, m *Manager) {
				assert.Equal(t, 1.0, m.Volume())
			},
		},
		{
			name: "Pause and Resume Without Track",
			action: func(m *Manager) {
				m.Pause()
				m.Resume()
				m.Stop()
			},
			check: func(t *testing.T, m *Manager) {
				assert.False(t, m.IsPaused())
				assert.False(t, m.IsBusy())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(1.0, false)
			tt.action(m)
			tt.check(t, m)
		})
	}
}

func TestManager_PlayMissingFile(t *testing.T) {
	m := New(1.0, false)
	err := m.Play(filepath.Join(t.TempDir(), "missing.mp3"), false, nil)
	assert.Error(t, err)
	assert.False(t, m.IsBusy())
}

func TestDecodeMedia_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.wav")
	assert.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	_, _, err := DecodeMedia(path)
	assert.Error(t, err)

	_, err = GetDuration(path)
	assert.Error(t, err)
}

func TestVolumeToPower(t *testing.T) {
	assert.Equal(t, 0.0, volumeToPower(1))
	assert.Equal(t, -1.0, volumeToPower(0.5))
	assert.Equal(t, -10.0, volumeToPower(0))
}
