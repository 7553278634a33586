/*
Package preview renders an HTML document previewing a style across
languages.

The document embeds the emitted stylesheet. Every sample character is
wrapped in a span naming the typeface the coverage walker chose for it,
so the preview and the stylesheet derive from the same resolved state.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package preview

import (
	"io"
	"strings"
	"unicode"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/typecascade/engine/coverage"
	"github.com/npillmayer/typecascade/engine/stack"
	"github.com/npillmayer/typecascade/engine/style"
	"github.com/npillmayer/typecascade/engine/stylesheet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tracer traces with key 'cascade.preview'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.preview")
}

// Attributes of character spans.
const (
	AttrTypeface = "data-typeface"
	AttrFamily   = "data-family"
	ClassMissing = "missing"    // not rendered by the primary typeface
	ClassUnsure  = "unverified" // typeface could not be checked
)

// Sample is a text to preview in a language.
type Sample struct {
	Lang  style.LanguageID
	Title string
	Text  string
}

// SamplesFor creates samples from the sample sets of langs. Languages
// without a sample set are skipped.
func SamplesFor(sets *coverage.SampleSets, langs ...style.LanguageID) []Sample {
	var samples []Sample
	for _, lang := range langs {
		set, ok := sets.Lookup(lang)
		if !ok {
			tracer().Debugf("no sample text for %s", lang)
			continue
		}
		text := set.Text
		if text == "" {
			text = set.Characters
		}
		samples = append(samples, Sample{Lang: lang, Title: lang.DisplayName(), Text: text})
	}
	return samples
}

// Document builds the preview document of st for samples.
func Document(st *style.Style, samples []Sample) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	doc.AppendChild(root)
	head := element(atom.Head)
	root.AppendChild(head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	css := element(atom.Style)
	css.AppendChild(text(stylesheet.Emit([]*style.Style{st})))
	head.AppendChild(css)
	body := element(atom.Body)
	root.AppendChild(body)
	for _, sample := range samples {
		body.AppendChild(section(st, sample))
	}
	return doc
}

// Render writes the preview document of st for samples to w.
func Render(w io.Writer, st *style.Style, samples []Sample) error {
	return html.Render(w, Document(st, samples))
}

func section(st *style.Style, sample Sample) *html.Node {
	sec := element(atom.Section,
		html.Attribute{Key: "class", Val: stylesheet.Class(st.ID)},
		html.Attribute{Key: "lang", Val: string(sample.Lang)})
	h := element(atom.H2)
	h.AppendChild(text(sample.Title))
	sec.AppendChild(h)
	p := element(atom.P)
	sec.AppendChild(p)
	primary := stack.PrimaryFor(st, sample.Lang)
	stk := stack.Build(st, sample.Lang)
	var spaces strings.Builder
	for _, r := range sample.Text {
		if unicode.IsSpace(r) {
			spaces.WriteRune(r)
			continue
		}
		if spaces.Len() > 0 {
			p.AppendChild(text(spaces.String()))
			spaces.Reset()
		}
		p.AppendChild(charSpan(st, r, primary, stk))
	}
	if spaces.Len() > 0 {
		p.AppendChild(text(spaces.String()))
	}
	return sec
}

func charSpan(st *style.Style, r rune, primary *style.Typeface, stk stack.Stack) *html.Node {
	res := coverage.RenderChar(r, primary, stk)
	id := string(stack.SystemID)
	if res.Typeface != nil {
		id = string(res.Typeface.ID)
	}
	fam := res.Family(st, stk)
	attrs := []html.Attribute{
		{Key: AttrTypeface, Val: id},
		{Key: AttrFamily, Val: fam},
	}
	var classes []string
	if res.MissingFromPrimary {
		classes = append(classes, ClassMissing)
	}
	if !res.Verified {
		classes = append(classes, ClassUnsure)
	}
	if len(classes) > 0 {
		attrs = append(attrs, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}
	span := element(atom.Span, attrs...)
	span.AppendChild(text(string(r)))
	return span
}

// Find returns all nodes of doc matching a CSS selector.
func Find(doc *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, err
	}
	return sel.MatchAll(doc), nil
}

// RenderedBy returns the characters of doc rendered by typeface id, in
// document order.
func RenderedBy(doc *html.Node, id style.TypefaceID) string {
	spans, err := Find(doc, "span["+AttrTypeface+"=\""+string(id)+"\"]")
	if err != nil {
		tracer().Errorf("illegal typeface id %q", id)
		return ""
	}
	var sb strings.Builder
	for _, n := range spans {
		if c := n.FirstChild; c != nil && c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
