package narration

import (
	"golang.org/x/text/language"
)

// DefaultLocale is spoken when a language code cannot be resolved.
const DefaultLocale = "en-US"

// Locale expands a guide language code to a speech locale using the likely
// region of the language: "es" becomes "es-ES", "zh" becomes "zh-CN".
// An explicit region is kept.
func Locale(code string) string {
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return DefaultLocale
	}
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLocale
	}
	region, conf := tag.Region()
	if conf == language.No || region.String() == "ZZ" {
		return DefaultLocale
	}
	return base.String() + "-" + region.String()
}
