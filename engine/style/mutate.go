package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/dimen"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
)

// AddTypeface appends a typeface to the registry. The first typeface added
// becomes the primary typeface. Adding a duplicate of the primary typeface,
// or of a candidate of the same provenance, is a no-op and returns false.
func (s *Style) AddTypeface(tf *Typeface) bool {
	if tf == nil {
		return false
	}
	if tf.ID == "" {
		tf.ID = NewTypefaceID()
	}
	if _, exists := s.Lookup(tf.ID); exists {
		tracer().Infof("typeface %s already in registry of style %s", tf.ID, s.ID)
		return false
	}
	if dup := s.findDuplicate(tf); dup != nil {
		tracer().Infof("typeface %q duplicates %s, not added", tf.Key(), dup)
		return false
	}
	if len(s.Typefaces) == 0 && tf.Provenance != General {
		tracer().Debugf("first typeface of style %s becomes a general primary", s.ID)
		tf.Provenance, tf.Lang = General, ""
	}
	s.Typefaces = append(s.Typefaces, tf)
	tracer().Debugf("style %s: added %s at position %d", s.ID, tf, len(s.Typefaces)-1)
	return true
}

func (s *Style) findDuplicate(tf *Typeface) *Typeface {
	key := tf.Key()
	if key == "" || tf.Provenance.IsClone() {
		return nil
	}
	for i, other := range s.Typefaces {
		if other.Provenance.IsClone() || other.Key() != key {
			continue
		}
		if i == 0 || (other.Provenance == tf.Provenance && other.Lang == tf.Lang) {
			return other
		}
	}
	return nil
}

// ReplacePrimary makes tf the primary typeface. The former primary typeface
// is dropped, together with every override referencing it. If tf duplicates
// a general fallback candidate, that candidate is promoted instead.
func (s *Style) ReplacePrimary(tf *Typeface) error {
	if tf == nil {
		return core.Error(core.EINVALID, "cannot make nil the primary typeface")
	}
	if len(s.Typefaces) == 0 {
		s.AddTypeface(tf)
		return nil
	}
	old := s.Typefaces[0]
	key := tf.Key()
	for i := 1; i < len(s.Typefaces); i++ {
		cand := s.Typefaces[i]
		if cand.Provenance == General && key != "" && cand.Key() == key {
			tracer().Infof("promoting fallback %s to primary", cand)
			s.Typefaces = append(s.Typefaces[:i], s.Typefaces[i+1:]...)
			s.Typefaces[0] = cand
			s.dropReferences(old.ID)
			return nil
		}
	}
	if tf.ID == "" {
		tf.ID = NewTypefaceID()
	}
	tf.Provenance, tf.Lang, tf.Origin = General, "", ""
	s.Typefaces[0] = tf
	s.dropReferences(old.ID)
	return nil
}

// RemoveTypeface removes a fallback typeface, every clone made from it and
// every override referencing any of them. The primary typeface may be
// removed only if it is the last one.
func (s *Style) RemoveTypeface(id TypefaceID) error {
	i := s.IndexOf(id)
	if i < 0 {
		return core.Error(core.EMISSING, "no typeface %s in style %s", id, s.ID)
	}
	if i == 0 && len(s.Typefaces) > 1 {
		return core.Error(core.EINVALID, "primary typeface cannot be removed while fallbacks exist")
	}
	s.Typefaces = append(s.Typefaces[:i], s.Typefaces[i+1:]...)
	s.dropReferences(id)
	return nil
}

// dropReferences removes clones of id and repairs dangling overrides.
func (s *Style) dropReferences(id TypefaceID) {
	var clones []TypefaceID
	for _, tf := range s.Typefaces {
		if tf.Origin == id && tf.Provenance.IsClone() {
			clones = append(clones, tf.ID)
		}
	}
	for _, c := range clones {
		if j := s.IndexOf(c); j > 0 {
			s.Typefaces = append(s.Typefaces[:j], s.Typefaces[j+1:]...)
			s.dropReferences(c)
		}
	}
	s.RepairOrphans()
}

// MoveTypeface moves a fallback typeface to registry position to. The
// primary position cannot be the source or the target of a move.
func (s *Style) MoveTypeface(id TypefaceID, to int) error {
	i := s.IndexOf(id)
	if i < 0 {
		return core.Error(core.EMISSING, "no typeface %s in style %s", id, s.ID)
	}
	if i == 0 || to < 1 || to >= len(s.Typefaces) {
		return core.Error(core.EINVALID, "cannot move typeface from position %d to %d", i, to)
	}
	tf := s.Typefaces[i]
	s.Typefaces = append(s.Typefaces[:i], s.Typefaces[i+1:]...)
	s.Typefaces = append(s.Typefaces[:to], append([]*Typeface{tf}, s.Typefaces[to:]...)...)
	return nil
}

// CloneTypeface duplicates typeface id to serve language lang. A primary
// override clone replaces the primary typeface for lang, other clones
// substitute the original in the fallback cascade of lang.
func (s *Style) CloneTypeface(id TypefaceID, lang LanguageID, asPrimaryOverride bool) (*Typeface, error) {
	orig, ok := s.Lookup(id)
	if !ok {
		return nil, core.Error(core.EMISSING, "no typeface %s in style %s", id, s.ID)
	}
	if lang == "" {
		return nil, core.Error(core.EINVALID, "clone of %s needs a language", id)
	}
	c := orig.Copy()
	c.ID = NewTypefaceID()
	c.Lang = lang
	c.Origin = id
	c.Hidden = false
	c.Provenance = Clone
	if asPrimaryOverride {
		c.Provenance = PrimaryOverride
	}
	s.Typefaces = append(s.Typefaces, c)
	if asPrimaryOverride {
		s.PrimaryOverrides[lang] = c.ID
		tracer().Debugf("style %s: %s replaces primary for %s", s.ID, c, lang)
		return c, nil
	}
	switch o := s.FallbackOverrides[lang].(type) {
	case *Partial:
		o.Set(id, c.ID)
	case Direct:
		if o.ID == id {
			s.FallbackOverrides[lang] = Direct{ID: c.ID}
		} else {
			s.FallbackOverrides[lang] = NewPartial().Set(id, c.ID)
		}
	default:
		s.FallbackOverrides[lang] = NewPartial().Set(id, c.ID)
	}
	tracer().Debugf("style %s: %s substitutes %s for %s", s.ID, c, id, lang)
	return c, nil
}

// SetFallbackFontOverride restricts the fallback cascade of lang. id is a
// typeface id or LegacyKeyword. Typefaces without a font binary cannot be
// verified and are treated like LegacyKeyword: lang gets the system
// fallback only.
func (s *Style) SetFallbackFontOverride(lang LanguageID, id string) error {
	if id == LegacyKeyword {
		s.FallbackOverrides[lang] = Legacy{}
		return nil
	}
	tf, ok := s.Lookup(TypefaceID(id))
	if !ok {
		return core.Error(core.EMISSING, "no typeface %s in style %s", id, s.ID)
	}
	if !tf.HasBinary() {
		tracer().Debugf("%s has no binary, %s falls back to system family", tf, lang)
		s.FallbackOverrides[lang] = Legacy{}
		return nil
	}
	s.FallbackOverrides[lang] = Direct{ID: tf.ID}
	return nil
}

// SetPartialFallbackOverride substitutes original with override in the
// fallback cascade of lang, leaving all other candidates untouched.
func (s *Style) SetPartialFallbackOverride(lang LanguageID, original, override TypefaceID) error {
	for _, id := range []TypefaceID{original, override} {
		if _, ok := s.Lookup(id); !ok {
			return core.Error(core.EMISSING, "no typeface %s in style %s", id, s.ID)
		}
	}
	if p, ok := s.FallbackOverrides[lang].(*Partial); ok {
		p.Set(original, override)
		return nil
	}
	s.FallbackOverrides[lang] = NewPartial().Set(original, override)
	return nil
}

// ClearFallbackOverride gives lang the general cascade.
func (s *Style) ClearFallbackOverride(lang LanguageID) {
	delete(s.FallbackOverrides, lang)
}

// SetPrimaryFontOverride makes typeface id stand in for the primary
// typeface when rendering lang.
func (s *Style) SetPrimaryFontOverride(lang LanguageID, id TypefaceID) error {
	i := s.IndexOf(id)
	if i < 0 {
		return core.Error(core.EMISSING, "no typeface %s in style %s", id, s.ID)
	}
	if i == 0 {
		return core.Error(core.EINVALID, "primary typeface cannot override itself")
	}
	s.PrimaryOverrides[lang] = id
	return nil
}

func (s *Style) ClearPrimaryFontOverride(lang LanguageID) {
	delete(s.PrimaryOverrides, lang)
}

// SetLanguageScale sets or, for None, clears the scale of language-bound
// typefaces of lang.
func (s *Style) SetLanguageScale(lang LanguageID, p option.T[percent.Percent]) {
	if v, ok := p.Get(); ok {
		s.LanguageScales[lang] = v
		return
	}
	delete(s.LanguageScales, lang)
}

// SetLanguageLineHeight sets or, for None, clears the line-height of text
// in lang.
func (s *Style) SetLanguageLineHeight(lang LanguageID, lh option.T[LineHeight]) {
	if v, ok := lh.Get(); ok {
		s.LanguageLineHeights[lang] = v
		return
	}
	delete(s.LanguageLineHeights, lang)
}

// SetLetterSpacing sets the letter-spacing of the style, a CSS length or
// 'normal'.
func (s *Style) SetLetterSpacing(v string) error {
	l, err := ParseLetterSpacing(v)
	if err != nil {
		return err
	}
	s.LetterSpacing = l
	return nil
}

// SetTypefaceLetterSpacing sets the letter-spacing of typeface id. An empty
// value removes the typeface's own letter-spacing.
func (s *Style) SetTypefaceLetterSpacing(id TypefaceID, v string) error {
	tf, ok := s.Lookup(id)
	if !ok {
		return core.Error(core.EMISSING, "no typeface %s in style %s", id, s.ID)
	}
	if strings.TrimSpace(v) == "" {
		tf.LetterSpacing = option.Empty[string]()
		return nil
	}
	l, err := ParseLetterSpacing(v)
	if err != nil {
		return err
	}
	tf.LetterSpacing = option.Of(l)
	return nil
}

// ParseLetterSpacing normalizes a letter-spacing value.
func ParseLetterSpacing(v string) (string, error) {
	l, err := dimen.ParseLength(v)
	if err != nil {
		return "", core.WrapError(err, core.EINVALID, "illegal letter-spacing %q", v)
	}
	return l.String(), nil
}

// RepairOrphans drops every override entry referencing a typeface not in
// the registry. It returns a warning per dropped entry.
func (s *Style) RepairOrphans() []string {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		w := fmt.Sprintf(format, args...)
		tracer().Infof("style %s: %s", s.ID, w)
		warnings = append(warnings, w)
	}
	known := func(id TypefaceID) bool {
		_, ok := s.Lookup(id)
		return ok
	}
	for _, lang := range sortedKeys(s.PrimaryOverrides) {
		if id := s.PrimaryOverrides[lang]; !known(id) || s.IndexOf(id) == 0 {
			warn("dropped primary override %s for %s", id, lang)
			delete(s.PrimaryOverrides, lang)
		}
	}
	for _, lang := range sortedKeys(s.FallbackOverrides) {
		switch o := s.FallbackOverrides[lang].(type) {
		case Direct:
			if !known(o.ID) {
				warn("dropped fallback override %s for %s", o.ID, lang)
				delete(s.FallbackOverrides, lang)
			}
		case *Partial:
			for _, orig := range o.Originals() {
				over, _ := o.Get(orig)
				if !known(orig) || !known(over) {
					warn("dropped partial fallback override %s→%s for %s", orig, over, lang)
					o.Remove(orig)
				}
			}
			if o.Len() == 0 {
				delete(s.FallbackOverrides, lang)
			}
		case nil:
			delete(s.FallbackOverrides, lang)
		}
	}
	return warnings
}

func sortedKeys[V any](m map[LanguageID]V) []LanguageID {
	keys := make([]LanguageID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortLanguages(keys)
	return keys
}

func sortLanguages(langs []LanguageID) {
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
}
