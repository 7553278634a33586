package stylesheet

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/npillmayer/typecascade/core/dimen"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/npillmayer/typecascade/engine/resolve"
	"github.com/npillmayer/typecascade/engine/stack"
	"github.com/npillmayer/typecascade/engine/style"
	"golang.org/x/text/language"
)

// ClassPrefix prefixes the class selector of a style.
const ClassPrefix = "cascade-"

// Class returns the class name for style id.
func Class(styleID string) string {
	return ClassPrefix + style.Slug(styleID)
}

// Emit returns the stylesheet for styles as text.
func Emit(styles []*style.Style) string {
	return Build(styles).String()
}

// Build creates the stylesheet for styles. Output is deterministic.
func Build(styles []*style.Style) *css.Stylesheet {
	sheet := css.NewStylesheet()
	for _, st := range styles {
		if st == nil {
			continue
		}
		n := len(sheet.Rules)
		for _, tf := range st.Typefaces {
			if rule := FontFace(st, tf); rule != nil {
				sheet.Rules = append(sheet.Rules, rule)
			}
		}
		if st.Primary() != nil {
			sheet.Rules = append(sheet.Rules, styleRule(st))
			for _, lang := range st.Languages() {
				sheet.Rules = append(sheet.Rules, languageRule(st, lang))
			}
		}
		tracer().Debugf("style %s: %d rules", st.ID, len(sheet.Rules)-n)
	}
	return sheet
}

// FontFace creates the @font-face rule for typeface tf of st. It returns nil
// for typefaces with neither a font source nor a family name.
func FontFace(st *style.Style, tf *style.Typeface) *css.Rule {
	src := source(st, tf)
	if src == "" {
		tracer().Infof("typeface %s has no source, not emitted", tf)
		return nil
	}
	rule := css.NewRule(css.AtRule)
	rule.Name = "@font-face"
	declare(rule, "font-family", quote(st.FamilyOf(tf.ID)))
	declare(rule, "src", src)
	rs, ok := resolve.ResolveIn(st, tf.ID, boundLanguage(st, tf))
	if !ok {
		return rule
	}
	if !rs.Scale.IsIdentity() {
		declare(rule, "size-adjust", rs.Scale.String())
	}
	if tf.IsVariable() {
		declare(rule, "font-variation-settings", fmt.Sprintf(`"wght" %s`, number(rs.Weight)))
	}
	metric := func(name string, v float64, ok bool) {
		if ok {
			declare(rule, name, percent.FromRatio(v).String())
		}
	}
	asc, ok := rs.AscentOverride.Get()
	metric("ascent-override", asc, ok)
	desc, ok := rs.DescentOverride.Get()
	metric("descent-override", desc, ok)
	gap, ok := rs.LineGapOverride.Get()
	metric("line-gap-override", gap, ok)
	return rule
}

// source returns the src descriptor for tf. A typeface which lost its font
// binary uses the binary of a sibling with the same file or family name.
func source(st *style.Style, tf *style.Typeface) string {
	if tf.HasBinary() {
		return fontURL(tf.Handle)
	}
	for _, sib := range st.Typefaces {
		if sib != tf && sib.HasBinary() && sib.Key() == tf.Key() {
			tracer().Debugf("%s borrows the font source of %s", tf, sib)
			return fontURL(sib.Handle)
		}
	}
	if tf.Name != "" {
		return fmt.Sprintf("local(%s)", quote(tf.Name))
	}
	return ""
}

func fontURL(h font.Handle) string {
	return fmt.Sprintf("url(%s) format(%s)", quote(h.Source()), quote(format(h)))
}

func format(h font.Handle) string {
	if sf, ok := h.(*font.ScalableFont); ok {
		return sf.Format()
	}
	switch strings.ToLower(path.Ext(h.Source())) {
	case ".otf":
		return "opentype"
	case ".woff":
		return "woff"
	case ".woff2":
		return "woff2"
	}
	return "truetype"
}

// boundLanguage returns the language a typeface is rendered for, if it
// serves a single one.
func boundLanguage(st *style.Style, tf *style.Typeface) style.LanguageID {
	if tf.Provenance.IsLangSpecific() {
		return tf.Lang
	}
	for _, lang := range st.Languages() {
		if st.PrimaryOverrides[lang] == tf.ID {
			return lang
		}
	}
	return ""
}

func styleRule(st *style.Style) *css.Rule {
	rule := css.NewRule(css.QualifiedRule)
	rule.Selectors = []string{"." + Class(st.ID)}
	declare(rule, "font-family", familyList(st, st.Primary(), stack.Build(st, "")))
	size := st.BaseFontSize * st.Scales.Active.Ratio()
	declare(rule, "font-size", dimen.Px(size).String())
	declare(rule, "line-height", st.LineHeight.String())
	if st.LetterSpacing != "" {
		declare(rule, "letter-spacing", st.LetterSpacing)
	}
	declare(rule, "font-weight", number(st.Weight))
	return rule
}

func languageRule(st *style.Style, lang style.LanguageID) *css.Rule {
	rule := css.NewRule(css.QualifiedRule)
	class := "." + Class(st.ID)
	sel := ":lang(" + langArgument(lang) + ")"
	rule.Selectors = []string{class + sel, class + " " + sel}
	primary := stack.PrimaryFor(st, lang)
	declare(rule, "font-family", familyList(st, primary, stack.Build(st, lang)))
	if lh, ok := st.LanguageLineHeights[lang]; ok {
		declare(rule, "line-height", lh.String())
	}
	return rule
}

func familyList(st *style.Style, primary *style.Typeface, stk stack.Stack) string {
	fams := []string{quote(st.FamilyOf(primary.ID))}
	for _, e := range stk {
		if e.IsSystem() && genericFamilies[strings.ToLower(e.Family)] {
			fams = append(fams, e.Family)
			continue
		}
		fams = append(fams, quote(e.Family))
	}
	return strings.Join(fams, ", ")
}

var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "ui-serif": true, "ui-sans-serif": true,
	"ui-monospace": true, "ui-rounded": true, "math": true, "emoji": true,
	"fangsong": true,
}

func declare(rule *css.Rule, property, value string) {
	decl := css.NewDeclaration()
	decl.Property = property
	decl.Value = value
	rule.Declarations = append(rule.Declarations, decl)
}

// quote creates a CSS string token for s.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == 0:
			sb.WriteString(`\fffd `)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\%x `, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// langArgument is the argument of :lang() for lang. BCP 47 tags are written
// as identifiers, anything else as a string.
func langArgument(lang style.LanguageID) string {
	if _, err := language.Parse(string(lang)); err == nil && isIdent(string(lang)) {
		return string(lang)
	}
	return quote(string(lang))
}

func isIdent(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') || s[0] == '-' {
		return false
	}
	for _, r := range s {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-'
		if !ok {
			return false
		}
	}
	return true
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
