package coverage

import (
	"fmt"
	"unicode"

	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/npillmayer/typecascade/engine/stack"
	"github.com/npillmayer/typecascade/engine/style"
)

// PrimaryIndex is the stack index reported for characters rendered by the
// primary typeface.
const PrimaryIndex = -1

// Result tells which typeface renders a character.
type Result struct {
	Typeface           *style.Typeface // nil for the system fallback
	Index              int             // position in the stack, or PrimaryIndex
	MissingFromPrimary bool
	Verified           bool // the chosen typeface is known to hold a glyph
}

// RenderChar decides which typeface renders r. primary is the typeface
// rendering the language first, stk its fallback stack. RenderChar has no
// side effects.
func RenderChar(r rune, primary *style.Typeface, stk stack.Stack) Result {
	if primary != nil {
		if !primary.HasBinary() {
			return Result{Typeface: primary, Index: PrimaryIndex}
		}
		if primary.Handle.GlyphIndex(r) != 0 {
			return Result{Typeface: primary, Index: PrimaryIndex, Verified: true}
		}
	}
	for i, e := range stk {
		h := e.Handle()
		if h == nil {
			return Result{Typeface: e.Typeface, Index: i, MissingFromPrimary: true}
		}
		if h.GlyphIndex(r) != 0 {
			return Result{Typeface: e.Typeface, Index: i, MissingFromPrimary: true, Verified: true}
		}
	}
	if len(stk) == 0 {
		return Result{Typeface: primary, Index: PrimaryIndex, MissingFromPrimary: true}
	}
	last := len(stk) - 1
	tracer().Debugf("no typeface verified for %q, forcing %s", r, stk[last].Family)
	return Result{Typeface: stk[last].Typeface, Index: last, MissingFromPrimary: true}
}

// Family returns the family reference of the typeface chosen by res.
func (res Result) Family(st *style.Style, stk stack.Stack) string {
	if res.Index == PrimaryIndex || res.Index >= len(stk) {
		if res.Typeface == nil {
			return st.DefaultFallbackFamily
		}
		return st.FamilyOf(res.Typeface.ID)
	}
	return stk[res.Index].Family
}

// Report is the coverage of one language by one style.
type Report struct {
	Lang           style.LanguageID
	Checked        int    // characters checked, whitespace excluded
	Missing        int    // characters no verifiable typeface covers
	MissingChars   []rune // the missing characters, in sample order
	Representative bool   // the checked set is a sample of a large script
	Percent        option.T[percent.Percent]
}

// Known is false if no typeface involved could be verified.
func (r Report) Known() bool {
	return r.Percent.IsSome()
}

func (r Report) String() string {
	if !r.Known() {
		return fmt.Sprintf("%s: unknown (%d characters)", r.Lang, r.Checked)
	}
	return fmt.Sprintf("%s: %s (%d of %d missing)", r.Lang, r.Percent.Unwrap(), r.Missing, r.Checked)
}

// Check measures how well the cascade of st for lang covers chars.
func Check(st *style.Style, lang style.LanguageID, chars []rune) Report {
	primary := stack.PrimaryFor(st, lang)
	stk := stack.Build(st, lang)
	verifiable := primary.HasBinary()
	for _, e := range stk {
		verifiable = verifiable || e.Handle() != nil
	}
	rep := Report{Lang: lang}
	for _, r := range chars {
		if unicode.IsSpace(r) {
			continue
		}
		rep.Checked++
		if !covered(r, primary, stk) {
			rep.Missing++
			rep.MissingChars = append(rep.MissingChars, r)
		}
	}
	if verifiable && rep.Checked > 0 {
		rep.Percent = option.Of(percent.FromFloat(
			float64(rep.Checked-rep.Missing) / float64(rep.Checked) * 100))
	}
	return rep
}

// LanguageCoverage measures st against the sample set of lang. The result
// is false if there is no sample set for lang.
func LanguageCoverage(st *style.Style, lang style.LanguageID, samples *SampleSets) (Report, bool) {
	set, ok := samples.Lookup(lang)
	if !ok {
		tracer().Infof("no sample set for language %s", lang)
		return Report{Lang: lang}, false
	}
	rep := Check(st, lang, set.Runes())
	rep.Representative = set.Representative
	return rep, true
}

// covered is true if the primary typeface or a parsed stack entry holds a
// glyph for r.
func covered(r rune, primary *style.Typeface, stk stack.Stack) bool {
	if primary.HasBinary() && primary.Handle.GlyphIndex(r) != 0 {
		return true
	}
	for _, e := range stk {
		if h := e.Handle(); h != nil && h.GlyphIndex(r) != 0 {
			return true
		}
	}
	return false
}
