// Package sapi speaks through the Windows SAPI5 engine via OLE automation.
package sapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"voiceguide/pkg/tts"
)

// lcids maps speech locales to the hex language ids SAPI voice tokens carry.
var lcids = map[string]string{
	"en-US": "409",
	"en-GB": "809",
	"es-ES": "C0A",
	"fr-FR": "40C",
	"de-DE": "407",
	"zh-CN": "804",
}

// Provider implements tts.Provider using Windows SAPI5 via OLE.
type Provider struct {
	mu sync.Mutex
}

// NewProvider creates a new SAPI5 provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Synthesize generates a .wav file using SAPI5.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, locale, outputPath string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ole.CoInitialize(0); err == nil {
		defer ole.CoUninitialize()
	}

	voice, err := createDispatch("SAPI.SpVoice")
	if err != nil {
		return "", err
	}
	defer voice.Release()

	switch {
	case voiceID != "":
		p.selectVoice(voice, "", voiceID)
	case lcids[locale] != "":
		p.selectVoice(voice, "Language="+lcids[locale], "")
	}

	stream, err := createDispatch("SAPI.SpFileStream")
	if err != nil {
		return "", err
	}
	defer stream.Release()

	fullPath := outputPath
	if !strings.HasSuffix(strings.ToLower(fullPath), ".wav") {
		fullPath += ".wav"
	}
	// 3 = SSFMCreateForWrite
	if _, err := oleutil.CallMethod(stream, "Open", fullPath, 3, false); err != nil {
		return "", fmt.Errorf("stream Open failed: %w", err)
	}
	defer func() {
		_, _ = oleutil.CallMethod(stream, "Close")
	}()

	if _, err := oleutil.PutPropertyRef(voice, "AudioOutputStream", stream); err != nil {
		return "", fmt.Errorf("failed to set AudioOutputStream: %w", err)
	}

	clean := tts.NormalizeText(text)
	if _, err := oleutil.CallMethod(voice, "Speak", clean, 0); err != nil {
		tts.Log("SAPI", locale, clean, 0, err)
		return "", fmt.Errorf("speak failed: %w", err)
	}

	tts.Log("SAPI", locale, clean, 200, nil)
	return "wav", nil
}

func createDispatch(progID string) (*ole.IDispatch, error) {
	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", progID, err)
	}
	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		return nil, fmt.Errorf("QueryInterface %s failed: %w", progID, err)
	}
	return disp, nil
}

// Voices lists available SAPI voices.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ole.CoInitialize(0); err == nil {
		defer ole.CoUninitialize()
	}

	voice, err := createDispatch("SAPI.SpVoice")
	if err != nil {
		return nil, err
	}
	defer voice.Release()

	tokensVar, err := oleutil.CallMethod(voice, "GetVoices")
	if err != nil {
		return nil, fmt.Errorf("failed to get voices collection: %w", err)
	}
	tokens := tokensVar.ToIDispatch()
	if tokens == nil {
		return nil, fmt.Errorf("voices collection is nil")
	}
	defer tokens.Release()

	var voices []tts.Voice
	_ = oleutil.ForEach(tokens, func(v *ole.VARIANT) error {
		item := v.ToIDispatch()
		if item == nil {
			return nil
		}
		defer item.Release()

		idVar, idErr := oleutil.CallMethod(item, "GetId")
		descVar, descErr := oleutil.CallMethod(item, "GetDescription", int32(0))
		if idErr != nil || descErr != nil {
			return nil
		}
		lang := ""
		if langVar, err := oleutil.CallMethod(item, "GetAttribute", "Language"); err == nil {
			lang = localeForLCID(langVar.ToString())
		}
		voices = append(voices, tts.Voice{ID: idVar.ToString(), Name: descVar.ToString(), Language: lang})
		return nil
	})
	return voices, nil
}

// selectVoice picks the first token matching the attribute filter, or the token with the given id.
func (p *Provider) selectVoice(voice *ole.IDispatch, required, voiceID string) {
	tokensVar, err := oleutil.CallMethod(voice, "GetVoices", required, "")
	if err != nil {
		return
	}
	tokens := tokensVar.ToIDispatch()
	if tokens == nil {
		return
	}
	defer tokens.Release()

	done := false
	_ = oleutil.ForEach(tokens, func(v *ole.VARIANT) error {
		item := v.ToIDispatch()
		if item == nil || done {
			return nil
		}
		defer item.Release()
		if voiceID != "" {
			idVar, _ := oleutil.CallMethod(item, "GetId")
			if idVar == nil || idVar.ToString() != voiceID {
				return nil
			}
		}
		if _, err := oleutil.PutPropertyRef(voice, "Voice", item); err == nil {
			done = true
		}
		return nil
	})
}

// localeForLCID maps a SAPI language attribute ("409" or "409;9") back to a locale.
func localeForLCID(attr string) string {
	first, _, _ := strings.Cut(attr, ";")
	n, err := strconv.ParseUint(first, 16, 32)
	if err != nil {
		return ""
	}
	for locale, hex := range lcids {
		if m, _ := strconv.ParseUint(hex, 16, 32); m == n {
			return locale
		}
	}
	return ""
}
