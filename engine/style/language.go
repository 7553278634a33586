package style

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageID identifies a language by its BCP 47 tag.
type LanguageID string

// Lang creates a canonical language id from a BCP 47 string. Strings which
// do not parse as a tag are kept, lower-cased.
func Lang(s string) LanguageID {
	s = strings.TrimSpace(s)
	tag, err := language.Parse(s)
	if err != nil {
		tracer().Debugf("language %q is not a BCP 47 tag", s)
		return LanguageID(strings.ToLower(s))
	}
	return LanguageID(tag.String())
}

// Tag returns the language tag for l, or language.Und.
func (l LanguageID) Tag() language.Tag {
	tag, err := language.Parse(string(l))
	if err != nil {
		return language.Und
	}
	return tag
}

// DisplayName returns an English name for l, plus its self-name if it
// differs, e.g. "Japanese (日本語)".
func (l LanguageID) DisplayName() string {
	tag := l.Tag()
	if tag == language.Und {
		return string(l)
	}
	en := display.English.Tags().Name(tag)
	self := display.Self.Name(tag)
	if self == "" || self == en {
		return en
	}
	return en + " (" + self + ")"
}
