package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/font/fontregistry"
	"github.com/npillmayer/typecascade/core/font/opentype"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/npillmayer/typecascade/engine/style"
)

// CurrentVersion is the document version written by Serialize.
const CurrentVersion = 2

// legacyVersion is assumed for documents without an envelope.
const legacyVersion = 1

// Document is the versioned envelope.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Data     Data     `json:"data"`
}

type Metadata struct {
	Version int    `json:"version"`
	Saved   string `json:"saved,omitempty"`
}

type Data struct {
	Styles []StyleDoc `json:"styles"`
}

type ScalesDoc struct {
	Active   percent.Percent `json:"active"`
	Fallback percent.Percent `json:"fallback"`
}

type StyleDoc struct {
	ID                    string                          `json:"id"`
	BaseFontSize          float64                         `json:"baseFontSize,omitempty"`
	BaseRootEm            float64                         `json:"baseRootEm,omitempty"`
	FontScales            *ScalesDoc                      `json:"fontScales,omitempty"`
	LineHeight            *style.LineHeight               `json:"lineHeight,omitempty"`
	LetterSpacing         string                          `json:"letterSpacing,omitempty"`
	Weight                float64                         `json:"weight,omitempty"`
	FallbackLineHeight    option.T[style.LineHeight]      `json:"fallbackLineHeight"`
	FallbackLetterSpacing option.T[string]                `json:"fallbackLetterSpacing"`
	DefaultFallbackFamily string                          `json:"defaultFallbackFamily,omitempty"`
	Typefaces             []TypefaceDoc                   `json:"typefaces"`
	PrimaryOverrides      map[string]string               `json:"primaryOverrides,omitempty"`
	FallbackOverrides     map[string]json.RawMessage      `json:"fallbackOverrides,omitempty"`
	LanguageScales        map[string]percent.Percent      `json:"languageScales,omitempty"`
	LanguageLineHeights   map[string]style.LineHeight     `json:"languageLineHeights,omitempty"`
}

type AxisDoc struct {
	Min     float64 `json:"min"`
	Default float64 `json:"default"`
	Max     float64 `json:"max"`
}

type TypefaceDoc struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name,omitempty"`
	FileName        string                     `json:"fileName,omitempty"`
	Fingerprint     string                     `json:"fingerprint,omitempty"`
	Provenance      string                     `json:"provenance,omitempty"`
	Lang            string                     `json:"lang,omitempty"`
	Origin          string                     `json:"origin,omitempty"`
	Axis            *AxisDoc                   `json:"axis,omitempty"`
	StaticWeight    int                        `json:"staticWeight,omitempty"`
	Scale           option.T[percent.Percent]  `json:"scale"`
	LineHeight      option.T[style.LineHeight] `json:"lineHeight"`
	LetterSpacing   option.T[string]           `json:"letterSpacing"`
	Weight          option.T[float64]          `json:"weight"`
	AscentOverride  option.T[float64]          `json:"ascentOverride"`
	DescentOverride option.T[float64]          `json:"descentOverride"`
	LineGapOverride option.T[float64]          `json:"lineGapOverride"`
	Color           string                     `json:"color,omitempty"`
	Hidden          bool                       `json:"hidden,omitempty"`
	// provenance flags of version 1 documents
	IsClone           bool `json:"isClone,omitempty"`
	IsLangSpecific    bool `json:"isLangSpecific,omitempty"`
	IsPrimaryOverride bool `json:"isPrimaryOverride,omitempty"`
}

// --- Serialize -------------------------------------------------------------

// Serialize writes styles as a versioned document. Font handles are not
// serialized.
func Serialize(styles []*style.Style) ([]byte, error) {
	doc := Document{
		Metadata: Metadata{Version: CurrentVersion, Saved: time.Now().UTC().Format(time.RFC3339)},
		Data:     Data{Styles: make([]StyleDoc, 0, len(styles))},
	}
	for _, st := range styles {
		sd, err := fromStyle(st)
		if err != nil {
			return nil, err
		}
		doc.Data.Styles = append(doc.Data.Styles, sd)
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot serialize styles")
	}
	return append(b, '\n'), nil
}

func fromStyle(st *style.Style) (StyleDoc, error) {
	lh := st.LineHeight
	sd := StyleDoc{
		ID:                    st.ID,
		BaseFontSize:          st.BaseFontSize,
		BaseRootEm:            st.BaseRootEm,
		FontScales:            &ScalesDoc{Active: st.Scales.Active, Fallback: st.Scales.Fallback},
		LineHeight:            &lh,
		LetterSpacing:         st.LetterSpacing,
		Weight:                st.Weight,
		FallbackLineHeight:    st.FallbackLineHeight,
		FallbackLetterSpacing: st.FallbackLetterSpacing,
		DefaultFallbackFamily: st.DefaultFallbackFamily,
		Typefaces:             make([]TypefaceDoc, 0, len(st.Typefaces)),
		PrimaryOverrides:      make(map[string]string, len(st.PrimaryOverrides)),
		FallbackOverrides:     make(map[string]json.RawMessage, len(st.FallbackOverrides)),
		LanguageScales:        make(map[string]percent.Percent, len(st.LanguageScales)),
		LanguageLineHeights:   make(map[string]style.LineHeight, len(st.LanguageLineHeights)),
	}
	for _, tf := range st.Typefaces {
		sd.Typefaces = append(sd.Typefaces, fromTypeface(tf))
	}
	for l, id := range st.PrimaryOverrides {
		sd.PrimaryOverrides[string(l)] = string(id)
	}
	for l, o := range st.FallbackOverrides {
		raw, err := style.MarshalFallbackOverride(o)
		if err != nil {
			return sd, core.WrapError(err, core.EINTERNAL, "style %s, language %s", st.ID, l)
		}
		sd.FallbackOverrides[string(l)] = raw
	}
	for l, p := range st.LanguageScales {
		sd.LanguageScales[string(l)] = p
	}
	for l, lh := range st.LanguageLineHeights {
		sd.LanguageLineHeights[string(l)] = lh
	}
	return sd, nil
}

func fromTypeface(tf *style.Typeface) TypefaceDoc {
	td := TypefaceDoc{
		ID:              string(tf.ID),
		Name:            tf.Name,
		FileName:        tf.FileName,
		Fingerprint:     tf.Fingerprint,
		Provenance:      tf.Provenance.String(),
		Lang:            string(tf.Lang),
		Origin:          string(tf.Origin),
		StaticWeight:    tf.StaticWeight,
		Scale:           tf.Scale,
		LineHeight:      tf.LineHeight,
		LetterSpacing:   tf.LetterSpacing,
		Weight:          tf.Weight,
		AscentOverride:  tf.AscentOverride,
		DescentOverride: tf.DescentOverride,
		LineGapOverride: tf.LineGapOverride,
		Color:           tf.Color,
		Hidden:          tf.Hidden,
	}
	if axis, ok := tf.Axis.Get(); ok {
		td.Axis = &AxisDoc{Min: axis.Minimum, Default: axis.Default, Max: axis.Max}
	}
	return td
}

// --- Deserialize -----------------------------------------------------------

func lookupFont(reg *fontregistry.Registry, td TypefaceDoc) (*font.ScalableFont, bool) {
	if td.Fingerprint != "" {
		return reg.LookupFingerprint(td.Fingerprint)
	}
	return reg.Lookup(td.FileName)
}

// FontRef names a font binary a document refers to.
type FontRef struct {
	Fingerprint string
	FileName    string
}

// FontRefs lists the font binaries a document refers to by fingerprint, in
// order of first appearance.
func FontRefs(b []byte) ([]FontRef, error) {
	b, err := Normalize(b)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err = json.Unmarshal(b, &doc); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "configuration cannot be read")
	}
	var refs []FontRef
	seen := make(map[string]bool)
	for _, sd := range doc.Data.Styles {
		for _, td := range sd.Typefaces {
			if td.Fingerprint != "" && !seen[td.Fingerprint] {
				seen[td.Fingerprint] = true
				refs = append(refs, FontRef{Fingerprint: td.Fingerprint, FileName: td.FileName})
			}
		}
	}
	return refs, nil
}

// Normalize accepts a versioned document or a flat version 1 document and
// returns the versioned form. The result has been validated against the
// document schema.
func Normalize(b []byte) ([]byte, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "configuration is not a JSON object")
	}
	_, hasMeta := probe["metadata"]
	_, hasData := probe["data"]
	if !hasMeta || !hasData {
		tracer().Infof("normalizing flat configuration document")
		var buf bytes.Buffer
		fmt.Fprintf(&buf, `{"metadata":{"version":%d},"data":`, legacyVersion)
		buf.Write(bytes.TrimSpace(b))
		buf.WriteByte('}')
		b = buf.Bytes()
	}
	if err := Validate(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Deserialize restores styles from a document. Font handles are looked up
// in reg by fingerprint, and by file name for typefaces saved without one.
// The returned warnings list typefaces without a font
// binary and dropped orphan overrides.
func Deserialize(b []byte, reg *fontregistry.Registry) ([]*style.Style, []string, error) {
	b, err := Normalize(b)
	if err != nil {
		return nil, nil, err
	}
	var doc Document
	if err = json.Unmarshal(b, &doc); err != nil {
		return nil, nil, core.WrapError(err, core.EINVALID, "configuration cannot be read")
	}
	if doc.Metadata.Version > CurrentVersion {
		return nil, nil, core.Error(core.EINVALID,
			"configuration version %d is newer than supported version %d",
			doc.Metadata.Version, CurrentVersion)
	}
	var warnings []string
	styles := make([]*style.Style, 0, len(doc.Data.Styles))
	for _, sd := range doc.Data.Styles {
		st, w, err := toStyle(sd, reg)
		if err != nil {
			return nil, warnings, err
		}
		warnings = append(warnings, w...)
		styles = append(styles, st)
	}
	return styles, warnings, nil
}

func toStyle(sd StyleDoc, reg *fontregistry.Registry) (*style.Style, []string, error) {
	st := style.NewStyle(sd.ID)
	if sd.BaseFontSize > 0 {
		st.BaseFontSize = sd.BaseFontSize
	}
	if sd.BaseRootEm > 0 {
		st.BaseRootEm = sd.BaseRootEm
	}
	if sd.FontScales != nil {
		st.Scales = style.FontScales{Active: sd.FontScales.Active, Fallback: sd.FontScales.Fallback}
	}
	if sd.LineHeight != nil {
		st.LineHeight = *sd.LineHeight
	}
	if sd.LetterSpacing != "" {
		st.LetterSpacing = sd.LetterSpacing
	}
	if sd.Weight > 0 {
		st.Weight = sd.Weight
	}
	if sd.DefaultFallbackFamily != "" {
		st.DefaultFallbackFamily = sd.DefaultFallbackFamily
	}
	st.FallbackLineHeight = sd.FallbackLineHeight
	st.FallbackLetterSpacing = sd.FallbackLetterSpacing
	var warnings []string
	seen := make(map[style.TypefaceID]bool)
	for _, td := range sd.Typefaces {
		tf := toTypeface(td)
		if seen[tf.ID] {
			warnings = append(warnings, fmt.Sprintf("style %s: dropped second typeface with id %s", st.ID, tf.ID))
			continue
		}
		seen[tf.ID] = true
		if len(st.Typefaces) == 0 {
			tf.Provenance, tf.Lang = style.General, ""
		}
		if tf.FileName != "" {
			if reg == nil {
				reg = fontregistry.GlobalRegistry()
			}
			if f, ok := lookupFont(reg, td); ok {
				tf.Attach(f)
			} else {
				w := fmt.Sprintf("style %s: font binary %s not loaded", st.ID, tf.FileName)
				tracer().Infof("%s", w)
				warnings = append(warnings, w)
			}
		}
		st.Typefaces = append(st.Typefaces, tf)
	}
	for l, id := range sd.PrimaryOverrides {
		st.PrimaryOverrides[style.LanguageID(l)] = style.TypefaceID(id)
	}
	for l, raw := range sd.FallbackOverrides {
		o, err := style.UnmarshalFallbackOverride(raw)
		if err != nil {
			return nil, warnings, core.WrapError(err, core.EINVALID,
				"style %s: illegal fallback override for %s", st.ID, l)
		}
		st.FallbackOverrides[style.LanguageID(l)] = o
	}
	for l, p := range sd.LanguageScales {
		st.LanguageScales[style.LanguageID(l)] = p
	}
	for l, lh := range sd.LanguageLineHeights {
		st.LanguageLineHeights[style.LanguageID(l)] = lh
	}
	warnings = append(warnings, st.RepairOrphans()...)
	return st, warnings, nil
}

func toTypeface(td TypefaceDoc) *style.Typeface {
	tf := &style.Typeface{
		ID:              style.TypefaceID(td.ID),
		Name:            td.Name,
		FileName:        td.FileName,
		Lang:            style.LanguageID(td.Lang),
		Origin:          style.TypefaceID(td.Origin),
		StaticWeight:    td.StaticWeight,
		Scale:           td.Scale,
		LineHeight:      td.LineHeight,
		LetterSpacing:   td.LetterSpacing,
		Weight:          td.Weight,
		AscentOverride:  td.AscentOverride,
		DescentOverride: td.DescentOverride,
		LineGapOverride: td.LineGapOverride,
		Color:           td.Color,
		Hidden:          td.Hidden,
	}
	if td.Axis != nil {
		tf.Axis = option.Of(opentype.Axis{
			Tag:     opentype.WeightTag,
			Minimum: td.Axis.Min,
			Default: td.Axis.Default,
			Max:     td.Axis.Max,
		})
	}
	if p, ok := style.ParseProvenance(td.Provenance); ok {
		tf.Provenance = p
	} else {
		tf.Provenance = legacyProvenance(td)
	}
	return tf
}

// legacyProvenance maps the provenance flags of version 1 documents.
func legacyProvenance(td TypefaceDoc) style.Provenance {
	switch {
	case td.IsPrimaryOverride:
		return style.PrimaryOverride
	case td.IsClone:
		return style.Clone
	case td.IsLangSpecific:
		return style.LanguageSpecific
	}
	return style.General
}
