package resolve

import (
	"fmt"
	"strings"

	"github.com/npillmayer/typecascade/core/dimen"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/npillmayer/typecascade/engine/style"
)

// Settings are the effective visual parameters of one typeface within one
// style.
type Settings struct {
	BaseFontSize    float64
	Scale           percent.Percent
	LineHeight      style.LineHeight
	LetterSpacing   string
	Weight          float64
	AscentOverride  option.T[float64] // ratio of units per em; None: do not emit
	DescentOverride option.T[float64]
	LineGapOverride option.T[float64]
}

// FontSize is the scaled font size.
func (s Settings) FontSize() dimen.Length {
	return dimen.Px(s.BaseFontSize * s.Scale.Ratio())
}

func (s Settings) String() string {
	return fmt.Sprintf("{size=%g scale=%s lh=%s ls=%s w=%g asc=%s desc=%s gap=%s}",
		s.BaseFontSize, s.Scale, s.LineHeight, s.LetterSpacing, s.Weight,
		s.AscentOverride, s.DescentOverride, s.LineGapOverride)
}

// Resolve computes the settings of typeface id in st. It returns false if
// id is not in the registry of st.
func Resolve(st *style.Style, id style.TypefaceID) (Settings, bool) {
	i := st.IndexOf(id)
	if i < 0 {
		tracer().Debugf("resolve: no typeface %s in style", id)
		return Settings{}, false
	}
	return settingsFor(st, st.Typefaces[i], i == 0), true
}

// ResolveIn computes the settings of typeface id in st when rendering
// language lang. On top of Resolve, the per-language scale applies to
// typefaces bound to lang without a scale of their own, and the
// per-language line-height applies to every typeface without a line-height
// of its own.
func ResolveIn(st *style.Style, id style.TypefaceID, lang style.LanguageID) (Settings, bool) {
	rs, ok := Resolve(st, id)
	if !ok || lang == "" {
		return rs, ok
	}
	i := st.IndexOf(id)
	tf := st.Typefaces[i]
	if p, found := st.LanguageScales[lang]; found && tf.Scale.IsNone() && boundTo(st, tf, lang) {
		rs.Scale = p
	}
	if lh, found := st.LanguageLineHeights[lang]; found && (i == 0 || tf.LineHeight.IsNone()) {
		rs.LineHeight = lh
	}
	return rs, true
}

// boundTo is true if tf serves lang specifically.
func boundTo(st *style.Style, tf *style.Typeface, lang style.LanguageID) bool {
	if tf.Provenance.IsLangSpecific() && tf.Lang == lang {
		return true
	}
	return st.PrimaryOverrides[lang] == tf.ID
}

func settingsFor(st *style.Style, tf *style.Typeface, isPrimary bool) Settings {
	rs := Settings{
		BaseFontSize:    st.BaseFontSize,
		AscentOverride:  tf.AscentOverride,
		DescentOverride: tf.DescentOverride,
		LineGapOverride: tf.LineGapOverride,
	}
	if isPrimary {
		rs.Scale = percent.Identity
		rs.LineHeight = st.LineHeight
		rs.LetterSpacing = st.LetterSpacing
		rs.Weight = Weight(tf, st.Weight)
		return rs
	}
	rs.Scale = tf.Scale.OrElse(st.Scales.Fallback)
	lineHeight, spacing := st.FallbackLineHeight.OrElse(st.LineHeight),
		st.FallbackLetterSpacing.OrElse(st.LetterSpacing)
	if tf.Provenance.IsPrimaryOverride() {
		lineHeight, spacing = st.LineHeight, st.LetterSpacing
	}
	rs.LineHeight = tf.LineHeight.OrElse(lineHeight)
	rs.LetterSpacing = spacing
	if ls, ok := tf.LetterSpacing.Get(); ok && strings.TrimSpace(ls) != "" {
		rs.LetterSpacing = ls
	}
	rs.Weight = Weight(tf, tf.Weight.OrElse(st.Weight))
	return rs
}

// Weight resolves a requested weight against what typeface tf can render:
// variable fonts clamp it to their weight axis, static fonts replace it by
// their weight class. Typefaces without weight metadata keep the request.
func Weight(tf *style.Typeface, requested float64) float64 {
	if axis, ok := tf.Axis.Get(); ok {
		return axis.Clamp(requested)
	}
	if tf.StaticWeight > 0 {
		return float64(tf.StaticWeight)
	}
	return requested
}
