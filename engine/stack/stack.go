package stack

import (
	"strings"

	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/engine/resolve"
	"github.com/npillmayer/typecascade/engine/style"
)

// SystemID is the typeface id of the system fallback entry.
const SystemID style.TypefaceID = "system"

// Entry is an element of a fallback stack.
type Entry struct {
	Family     string           // family reference, as emitted in the stylesheet
	TypefaceID style.TypefaceID // SystemID for the system fallback
	Typeface   *style.Typeface  // nil for the system fallback
	Settings   resolve.Settings
}

// IsSystem is true for the system fallback entry.
func (e Entry) IsSystem() bool {
	return e.TypefaceID == SystemID
}

// Handle returns the parsed font of the entry, if any.
func (e Entry) Handle() font.Handle {
	if e.Typeface == nil {
		return nil
	}
	return e.Typeface.Handle
}

// Stack is an ordered list of fallback entries.
type Stack []Entry

// Families lists the family references of s.
func (s Stack) Families() []string {
	fams := make([]string, len(s))
	for i, e := range s {
		fams[i] = e.Family
	}
	return fams
}

// Contains is true if typeface id is part of s.
func (s Stack) Contains(id style.TypefaceID) bool {
	for _, e := range s {
		if e.TypefaceID == id {
			return true
		}
	}
	return false
}

// PrimaryFor returns the typeface rendering lang first: the primary override
// of lang, if set and visible, else the primary typeface.
func PrimaryFor(st *style.Style, lang style.LanguageID) *style.Typeface {
	if id, ok := st.PrimaryOverrides[lang]; ok {
		if tf, found := st.Lookup(id); found && !tf.Hidden {
			return tf
		}
	}
	return st.Primary()
}

// Build computes the fallback stack of st for language lang. It is a pure
// function of its arguments.
func Build(st *style.Style, lang style.LanguageID) Stack {
	b := builder{st: st, lang: lang, placed: make(map[style.TypefaceID]bool)}
	general := GeneralCandidates(st)
	switch o := st.FallbackOverrides[lang].(type) {
	case style.Legacy:
		tracer().Debugf("stack for %s: system fallback only", lang)
		b.system()
		return b.stack
	case style.Direct:
		b.add(o.ID)
		b.addAll(general, nil)
	case *style.Partial:
		for _, id := range o.Overrides() {
			b.add(id)
		}
		slots := make(map[style.TypefaceID]bool)
		for _, id := range o.Originals() {
			slots[id] = true
		}
		b.addAll(general, slots)
	default:
		b.addAll(general, nil)
	}
	b.system()
	tracer().Debugf("stack for %s: %v", lang, b.stack.Families())
	return b.stack
}

// ExcludedIDs returns the ids claimed by a language override.
func ExcludedIDs(st *style.Style) map[style.TypefaceID]bool {
	excl := make(map[style.TypefaceID]bool)
	for _, o := range st.FallbackOverrides {
		if o == nil {
			continue
		}
		for _, id := range o.Claimed() {
			excl[id] = true
		}
	}
	for _, id := range st.PrimaryOverrides {
		excl[id] = true
	}
	return excl
}

// GeneralCandidates returns the fallback typefaces eligible for every
// language, in registry order.
func GeneralCandidates(st *style.Style) []*style.Typeface {
	primary := st.Primary()
	if primary == nil {
		return nil
	}
	excl := ExcludedIDs(st)
	var cands []*style.Typeface
	for _, tf := range st.Typefaces[1:] {
		switch {
		case tf.Hidden, tf.Provenance != style.General, excl[tf.ID]:
			continue
		case tf.ID == primary.ID, sameFont(tf, primary):
			tracer().Debugf("%s duplicates the primary typeface", tf)
			continue
		}
		cands = append(cands, tf)
	}
	return cands
}

func sameFont(a, b *style.Typeface) bool {
	if a.Key() != "" && a.Key() == b.Key() {
		return true
	}
	return a.Name != "" && strings.EqualFold(a.Name, b.Name)
}

type builder struct {
	st     *style.Style
	lang   style.LanguageID
	stack  Stack
	placed map[style.TypefaceID]bool
}

func (b *builder) add(id style.TypefaceID) {
	if b.placed[id] {
		return
	}
	tf, ok := b.st.Lookup(id)
	if !ok || tf.Hidden {
		return
	}
	rs, _ := resolve.ResolveIn(b.st, id, b.lang)
	b.stack = append(b.stack, Entry{
		Family:     b.st.FamilyOf(id),
		TypefaceID: id,
		Typeface:   tf,
		Settings:   rs,
	})
	b.placed[id] = true
}

func (b *builder) addAll(cands []*style.Typeface, skip map[style.TypefaceID]bool) {
	for _, tf := range cands {
		if !skip[tf.ID] {
			b.add(tf.ID)
		}
	}
}

// system appends the system fallback, unless an entry with the same family
// reference is present.
func (b *builder) system() {
	fam := b.st.DefaultFallbackFamily
	for _, e := range b.stack {
		if e.Family == fam {
			return
		}
	}
	b.stack = append(b.stack, Entry{
		Family:     fam,
		TypefaceID: SystemID,
		Settings:   SystemSettings(b.st, b.lang),
	})
}

// SystemSettings are the settings of the system fallback entry: the style's
// fallback defaults.
func SystemSettings(st *style.Style, lang style.LanguageID) resolve.Settings {
	rs := resolve.Settings{
		BaseFontSize:  st.BaseFontSize,
		Scale:         st.Scales.Fallback,
		LineHeight:    st.FallbackLineHeight.OrElse(st.LineHeight),
		LetterSpacing: st.FallbackLetterSpacing.OrElse(st.LetterSpacing),
		Weight:        st.Weight,
	}
	if lh, ok := st.LanguageLineHeights[lang]; ok {
		rs.LineHeight = lh
	}
	return rs
}
