package transcript

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// StripPunctuation replaces Unicode punctuation with spaces and collapses
// whitespace, which reads better in burned-in captions.
func StripPunctuation(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}

// DetectLanguage guesses the language of a transcript. Und is returned when
// the detector is not confident.
func DetectLanguage(t *Transcript) language.Tag {
	var b strings.Builder
	for cue := range t.Cues() {
		b.WriteString(cue.Text)
		b.WriteByte(' ')
		if b.Len() > 4096 {
			break
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return language.Und
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return language.Und
	}
	tag, err := language.Parse(info.Lang.Iso6391())
	if err != nil {
		return language.Und
	}
	return tag
}
