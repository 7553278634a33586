package style

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/font/opentype"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
)

// TypefaceID identifies a typeface within a style.
type TypefaceID string

// NewTypefaceID creates a fresh, random typeface id.
func NewTypefaceID() TypefaceID {
	return TypefaceID(uuid.NewString())
}

// Role of a typeface, derived from its registry position.
type Role int8

const (
	RoleFallback Role = iota
	RolePrimary
)

func (r Role) String() string {
	if r == RolePrimary {
		return "primary"
	}
	return "fallback"
}

// Provenance tells where a typeface came from and which part of the cascade
// it may serve.
type Provenance int8

const (
	General Provenance = iota
	LanguageSpecific
	Clone
	PrimaryOverride
)

var provenanceNames = [...]string{"general", "language", "clone", "primary-override"}

func (p Provenance) String() string {
	if int(p) < len(provenanceNames) {
		return provenanceNames[p]
	}
	return fmt.Sprintf("Provenance(%d)", int8(p))
}

// ParseProvenance is the inverse of String.
func ParseProvenance(s string) (Provenance, bool) {
	for i, n := range provenanceNames {
		if n == s {
			return Provenance(i), true
		}
	}
	return General, false
}

// IsLangSpecific is true for every typeface bound to a single language.
func (p Provenance) IsLangSpecific() bool { return p != General }

// IsClone is true for clones, including primary overrides.
func (p Provenance) IsClone() bool { return p == Clone || p == PrimaryOverride }

func (p Provenance) IsPrimaryOverride() bool { return p == PrimaryOverride }

// LineHeight is either 'auto' or a unitless factor.
type LineHeight struct {
	Auto  bool
	Value float64
}

// AutoLineHeight is the 'auto' sentinel.
var AutoLineHeight = LineHeight{Auto: true}

// LineHeightOf creates a numeric line-height.
func LineHeightOf(v float64) LineHeight {
	return LineHeight{Value: v}
}

// ParseLineHeight reads "auto" or a number.
func ParseLineHeight(s string) (LineHeight, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") || strings.EqualFold(s, "normal") {
		return AutoLineHeight, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return LineHeight{}, fmt.Errorf("illegal line-height %q", s)
	}
	return LineHeightOf(v), nil
}

// String returns a CSS value: 'normal' for auto.
func (lh LineHeight) String() string {
	if lh.Auto {
		return "normal"
	}
	return strconv.FormatFloat(lh.Value, 'f', -1, 64)
}

func (lh LineHeight) MarshalJSON() ([]byte, error) {
	if lh.Auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(lh.Value)
}

func (lh *LineHeight) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := ParseLineHeight(s)
		if err != nil {
			return err
		}
		*lh = v
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*lh = LineHeightOf(v)
	return nil
}

// Typeface is an entry of a style's registry. It is either backed by a
// parsed font binary (Handle is set) or known by its family name only
// (a "system" typeface).
//
// All optional settings override their style-level defaults when set.
type Typeface struct {
	ID          TypefaceID
	Name        string      // family name, as used for system typefaces
	FileName    string      // name of the uploaded file, empty for system typefaces
	Handle      font.Handle // parsed font; transient, never persisted
	Fingerprint string      // content hash of the font binary, empty for system typefaces
	Provenance  Provenance
	Lang        LanguageID // language served by language-bound typefaces
	Origin      TypefaceID // typeface a clone has been cloned from

	Axis         option.T[opentype.Axis] // variable 'wght' axis
	StaticWeight int                     // weight class of non-variable fonts, 0 if unknown

	Scale           option.T[percent.Percent]
	LineHeight      option.T[LineHeight]
	LetterSpacing   option.T[string]
	Weight          option.T[float64]
	AscentOverride  option.T[float64] // ratio of units per em
	DescentOverride option.T[float64]
	LineGapOverride option.T[float64]
	Color           string
	Hidden          bool
}

// NewSystemTypeface creates a typeface known by its family name only.
func NewSystemTypeface(family string) *Typeface {
	return &Typeface{
		ID:   NewTypefaceID(),
		Name: strings.TrimSpace(family),
	}
}

// NewFontTypeface creates a typeface for a parsed font binary. Axis and
// static weight are taken from the font.
func NewFontTypeface(fileName string, h font.Handle) *Typeface {
	tf := &Typeface{
		ID:       NewTypefaceID(),
		FileName: fileName,
	}
	if sf, ok := h.(*font.ScalableFont); ok && sf != nil {
		tf.Name = sf.Family()
	}
	if tf.Name == "" {
		tf.Name = font.NormalizeFontname(fileName)
	}
	tf.Attach(h)
	return tf
}

// Attach sets the font handle of a typeface and refreshes the weight
// metadata derived from it.
func (tf *Typeface) Attach(h font.Handle) {
	tf.Handle = h
	if h == nil {
		return
	}
	if sf, ok := h.(*font.ScalableFont); ok && sf != nil {
		tf.Fingerprint = sf.Fingerprint()
	}
	if axis, ok := h.WeightAxis(); ok {
		tf.Axis = option.Of(axis)
	} else {
		tf.Axis = option.Empty[opentype.Axis]()
	}
	tf.StaticWeight = h.StaticWeight()
}

// HasBinary is true if a parsed font is attached.
func (tf *Typeface) HasBinary() bool {
	return tf != nil && tf.Handle != nil
}

// IsVariable is true if the typeface declares a weight axis.
func (tf *Typeface) IsVariable() bool {
	return tf.Axis.IsSome()
}

// Key is the normalized file name, or the normalized family name for system
// typefaces. Typefaces with equal keys are considered duplicates.
func (tf *Typeface) Key() string {
	if tf.FileName != "" {
		return font.NormalizeFontname(tf.FileName)
	}
	return font.NormalizeFontname(tf.Name)
}

// Copy creates a shallow copy. The font handle is shared.
func (tf *Typeface) Copy() *Typeface {
	c := *tf
	return &c
}

func (tf *Typeface) String() string {
	if tf == nil {
		return "<nil typeface>"
	}
	return fmt.Sprintf("%s[%s|%s]", tf.Name, tf.ID, tf.Provenance)
}
