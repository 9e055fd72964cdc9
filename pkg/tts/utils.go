package tts

import (
	"fmt"
	"os"
	"strings"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes text for embedding in SSML.
func EscapeXML(text string) string {
	return xmlEscaper.Replace(text)
}

// BuildSSML wraps plain text in a single-voice SSML document.
func BuildSSML(locale, voice, text string) string {
	if locale == "" {
		locale = DefaultLocale
	}
	return fmt.Sprintf(
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'><voice name='%s'>%s</voice></speak>",
		EscapeXML(locale), EscapeXML(voice), EscapeXML(NormalizeText(text)),
	)
}

// NormalizeText collapses runs of whitespace, including newlines, into single spaces.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// VerifyAudioFile checks that a synthesized file exists and is large enough to hold audio.
func VerifyAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file missing: %w", err)
	}
	if info.Size() < MinAudioSize {
		return fmt.Errorf("audio file too small (%d bytes): %s", info.Size(), path)
	}
	return nil
}

func baseLanguage(locale string) string {
	base, _, _ := strings.Cut(strings.ToLower(locale), "-")
	return base
}
