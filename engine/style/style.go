package style

import (
	"fmt"
	"maps"
	"strings"

	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
)

// PrimaryStyleID is the name of the style every workspace starts with.
const PrimaryStyleID = "primary"

// FontScales holds the scales of the primary typeface and of fallbacks.
type FontScales struct {
	Active   percent.Percent
	Fallback percent.Percent
}

// Style is a named bundle of typographic defaults plus a typeface registry
// and the per-language override maps.
type Style struct {
	ID                    string
	BaseFontSize          float64 // in px
	BaseRootEm            float64 // in px
	Scales                FontScales
	LineHeight            LineHeight
	LetterSpacing         string
	Weight                float64
	FallbackLineHeight    option.T[LineHeight]
	FallbackLetterSpacing option.T[string]
	DefaultFallbackFamily string // system fallback, e.g. "sans-serif"

	Typefaces           []*Typeface // position 0 is the primary typeface
	PrimaryOverrides    map[LanguageID]TypefaceID
	FallbackOverrides   map[LanguageID]FallbackOverride
	LanguageScales      map[LanguageID]percent.Percent
	LanguageLineHeights map[LanguageID]LineHeight
}

// NewStyle creates an empty style with default settings.
func NewStyle(id string) *Style {
	if id == "" {
		id = PrimaryStyleID
	}
	return &Style{
		ID:                    id,
		BaseFontSize:          16,
		BaseRootEm:            16,
		Scales:                FontScales{Active: percent.Identity, Fallback: percent.Identity},
		LineHeight:            AutoLineHeight,
		LetterSpacing:         "normal",
		Weight:                400,
		DefaultFallbackFamily: "sans-serif",
		PrimaryOverrides:      make(map[LanguageID]TypefaceID),
		FallbackOverrides:     make(map[LanguageID]FallbackOverride),
		LanguageScales:        make(map[LanguageID]percent.Percent),
		LanguageLineHeights:   make(map[LanguageID]LineHeight),
	}
}

// Clone creates a deep copy of s. Typefaces are copied, font handles are
// shared.
func (s *Style) Clone() *Style {
	if s == nil {
		return nil
	}
	c := *s
	c.Typefaces = make([]*Typeface, len(s.Typefaces))
	for i, tf := range s.Typefaces {
		c.Typefaces[i] = tf.Copy()
	}
	c.PrimaryOverrides = maps.Clone(s.PrimaryOverrides)
	c.FallbackOverrides = make(map[LanguageID]FallbackOverride, len(s.FallbackOverrides))
	for l, o := range s.FallbackOverrides {
		if p, ok := o.(*Partial); ok {
			o = p.Copy()
		}
		c.FallbackOverrides[l] = o
	}
	c.LanguageScales = maps.Clone(s.LanguageScales)
	c.LanguageLineHeights = maps.Clone(s.LanguageLineHeights)
	return &c
}

// Primary returns the primary typeface, or nil for an empty registry.
func (s *Style) Primary() *Typeface {
	if s == nil || len(s.Typefaces) == 0 {
		return nil
	}
	return s.Typefaces[0]
}

// IndexOf returns the registry position of a typeface, or -1.
func (s *Style) IndexOf(id TypefaceID) int {
	if s == nil {
		return -1
	}
	for i, tf := range s.Typefaces {
		if tf.ID == id {
			return i
		}
	}
	return -1
}

// Lookup finds a typeface by id.
func (s *Style) Lookup(id TypefaceID) (*Typeface, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s.Typefaces[i], true
	}
	return nil, false
}

// RoleOf returns the role of a typeface.
func (s *Style) RoleOf(id TypefaceID) Role {
	if s.IndexOf(id) == 0 {
		return RolePrimary
	}
	return RoleFallback
}

// Languages returns every language with any kind of override, sorted.
func (s *Style) Languages() []LanguageID {
	seen := make(map[LanguageID]bool)
	for l := range s.PrimaryOverrides {
		seen[l] = true
	}
	for l := range s.FallbackOverrides {
		seen[l] = true
	}
	for l := range s.LanguageScales {
		seen[l] = true
	}
	for l := range s.LanguageLineHeights {
		seen[l] = true
	}
	langs := make([]LanguageID, 0, len(seen))
	for l := range seen {
		langs = append(langs, l)
	}
	sortLanguages(langs)
	return langs
}

// --- Family names ----------------------------------------------------------

// PrimaryFamily returns the family name under which the primary typeface of
// style styleID is emitted.
func PrimaryFamily(styleID string) string {
	return Slug(styleID) + "/primary"
}

// FallbackFamily returns the family name under which typeface id of style
// styleID is emitted. Family names never collide between styles or between
// typefaces sharing a file name: slugs are injective and never contain '/'.
func FallbackFamily(styleID string, id TypefaceID) string {
	return Slug(styleID) + "/fb/" + Slug(string(id))
}

// FamilyOf returns the synthesized family name of a typeface of s.
func (s *Style) FamilyOf(id TypefaceID) string {
	if s.IndexOf(id) == 0 {
		return PrimaryFamily(s.ID)
	}
	return FallbackFamily(s.ID, id)
}

// Slug makes s usable as part of a CSS identifier. Distinct strings map to
// distinct slugs. Lower-case ASCII letters, digits and '-' are kept,
// upper-case letters become '_' plus the lower-case letter, '_' is doubled
// and every other rune becomes '_' plus its decimal code point plus '_'.
func Slug(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteByte('_')
			sb.WriteRune(r + ('a' - 'A'))
		case r == '_':
			sb.WriteString("__")
		default:
			fmt.Fprintf(&sb, "_%d_", r)
		}
	}
	return sb.String()
}
