package model

// LanguageInfo describes one language a guide is available in.
type LanguageInfo struct {
	Code   string `json:"code"`   // e.g., "es"
	Name   string `json:"name"`   // e.g., "Español", as listed by the guide
	Locale string `json:"locale"` // speech locale, e.g., "es-ES"
}
