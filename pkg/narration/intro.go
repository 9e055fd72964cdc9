package narration

import (
	"math/rand/v2"
	"strings"
)

var introPhrases = map[string][]string{
	"en": {"You have arrived at", "You are now at", "This is"},
	"es": {"Has llegado a", "Te encuentras en", "Esto es"},
	"fr": {"Vous êtes arrivé à", "Vous êtes maintenant à", "Voici"},
	"de": {"Sie sind angekommen bei", "Sie befinden sich jetzt bei", "Das ist"},
	"zh": {"您已到达", "您现在在", "这里是"},
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// Composer builds the arrival script for a POI.
type Composer struct {
	Intros bool
	Pick   Picker
}

// NewComposer returns a composer picking intro phrases at random.
func NewComposer(intros bool) *Composer {
	return &Composer{Intros: intros, Pick: rand.IntN}
}

// IntroPhrase returns one of the arrival phrases for lang, English when the
// language has none.
func (c *Composer) IntroPhrase(lang string) string {
	phrases, ok := introPhrases[baseCode(lang)]
	if !ok {
		phrases = introPhrases["en"]
	}
	pick := c.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return phrases[pick(len(phrases))]
}

// Arrival returns "<intro> <name>. <description>", or "<name>. <description>"
// when intros are off.
func (c *Composer) Arrival(lang, name, description string) string {
	head := name
	if c.Intros {
		head = c.IntroPhrase(lang) + " " + name
	}
	if description == "" {
		return head + "."
	}
	return head + ". " + description
}

func baseCode(lang string) string {
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		return lang[:i]
	}
	return lang
}
