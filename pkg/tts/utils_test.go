package tts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyAudioFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("FileDoesNotExist", func(t *testing.T) {
		assert.Error(t, VerifyAudioFile(filepath.Join(tmpDir, "missing.mp3")))
	})

	t.Run("FileTooSmall", func(t *testing.T) {
		path := filepath.Join(tmpDir, "small.mp3")
		assert.NoError(t, os.WriteFile(path, make([]byte, 512), 0o644))
		assert.Error(t, VerifyAudioFile(path))
	})

	t.Run("FileValid", func(t *testing.T) {
		path := filepath.Join(tmpDir, "valid.mp3")
		assert.NoError(t, os.WriteFile(path, make([]byte, MinAudioSize+1), 0o644))
		assert.NoError(t, VerifyAudioFile(path))
	})
}

func TestBuildSSML(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		text     string
		expected []string
	}{
		{
			name:     "Normal text",
			locale:   "es-ES",
			text:     "Has llegado a Plaza Mayor.",
			expected: []string{"xml:lang='es-ES'", "Has llegado a Plaza Mayor."},
		},
		{
			name:     "Default locale",
			text:     "Hello",
			expected: []string{"xml:lang='en-US'"},
		},
		{
			name:     "Escaping",
			locale:   "en-US",
			text:     `Ben & Jerry's <b>"shop"</b>`,
			expected: []string{"Ben &amp; Jerry&apos;s &lt;b&gt;&quot;shop&quot;&lt;/b&gt;"},
		},
		{
			name:     "Whitespace collapsed",
			locale:   "en-US",
			text:     "line one\n\n  line two",
			expected: []string{">line one line two<"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSSML(tt.locale, "voice-x", tt.text)
			assert.Contains(t, got, "<voice name='voice-x'>")
			for _, exp := range tt.expected {
				assert.Contains(t, got, exp)
			}
		})
	}
}

func TestLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tts.log")
	SetLogPath(path)
	defer SetLogPath("logs/tts.log")

	Log("TEST", "fr-FR", "Voici la tour.", 200, nil)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "[TEST] [fr-FR] STATUS: 200")
	assert.Contains(t, string(data), "Voici la tour.")
}
