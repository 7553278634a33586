package style

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// LegacyKeyword is the persisted form of the Legacy fallback override.
const LegacyKeyword = "legacy"

// FallbackOverride is the fallback override of one language. It is one of
// Legacy, Direct or *Partial.
type FallbackOverride interface {
	isFallbackOverride()
	// Claimed lists every typeface id the override refers to.
	Claimed() []TypefaceID
}

// Legacy restricts a language to the style's system fallback family.
type Legacy struct{}

func (Legacy) isFallbackOverride()   {}
func (Legacy) Claimed() []TypefaceID { return nil }
func (Legacy) String() string        { return LegacyKeyword }

// Direct puts exactly one typeface in front of the general candidates.
type Direct struct {
	ID TypefaceID
}

func (Direct) isFallbackOverride()     {}
func (d Direct) Claimed() []TypefaceID { return []TypefaceID{d.ID} }
func (d Direct) String() string        { return string(d.ID) }

// Partial substitutes single general candidates ("slots") with override
// typefaces. Entries keep their insertion order.
type Partial struct {
	m *linkedhashmap.Map
}

// NewPartial creates an empty partial override.
func NewPartial() *Partial {
	return &Partial{m: linkedhashmap.New()}
}

func (*Partial) isFallbackOverride() {}

func (p *Partial) init() {
	if p.m == nil {
		p.m = linkedhashmap.New()
	}
}

// Set substitutes original with override. An existing slot keeps its
// position.
func (p *Partial) Set(original, override TypefaceID) *Partial {
	p.init()
	p.m.Put(original, override)
	return p
}

// Get returns the substitute for original.
func (p *Partial) Get(original TypefaceID) (TypefaceID, bool) {
	if p == nil || p.m == nil {
		return "", false
	}
	v, ok := p.m.Get(original)
	if !ok {
		return "", false
	}
	return v.(TypefaceID), true
}

// Remove drops the slot of original.
func (p *Partial) Remove(original TypefaceID) {
	if p != nil && p.m != nil {
		p.m.Remove(original)
	}
}

// Len returns the number of slots.
func (p *Partial) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Size()
}

// Originals returns the substituted typeface ids, in insertion order.
func (p *Partial) Originals() []TypefaceID {
	if p.Len() == 0 {
		return nil
	}
	keys := p.m.Keys()
	ids := make([]TypefaceID, len(keys))
	for i, k := range keys {
		ids[i] = k.(TypefaceID)
	}
	return ids
}

// Overrides returns the substitutes, in insertion order.
func (p *Partial) Overrides() []TypefaceID {
	if p.Len() == 0 {
		return nil
	}
	values := p.m.Values()
	ids := make([]TypefaceID, len(values))
	for i, v := range values {
		ids[i] = v.(TypefaceID)
	}
	return ids
}

// Claimed returns keys and values.
func (p *Partial) Claimed() []TypefaceID {
	return append(p.Originals(), p.Overrides()...)
}

// Copy creates an independent copy of p.
func (p *Partial) Copy() *Partial {
	c := NewPartial()
	for _, orig := range p.Originals() {
		over, _ := p.Get(orig)
		c.Set(orig, over)
	}
	return c
}

// Equal compares slots and their order.
func (p *Partial) Equal(other *Partial) bool {
	if p.Len() != other.Len() {
		return false
	}
	a, b := p.Originals(), other.Originals()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
		x, _ := p.Get(a[i])
		y, _ := other.Get(b[i])
		if x != y {
			return false
		}
	}
	return true
}

func (p *Partial) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, orig := range p.Originals() {
		if i > 0 {
			sb.WriteString(", ")
		}
		over, _ := p.Get(orig)
		sb.WriteString(fmt.Sprintf("%s→%s", orig, over))
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON writes a JSON object, keeping insertion order.
func (p *Partial) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, orig := range p.Originals() {
		if i > 0 {
			buf.WriteByte(',')
		}
		over, _ := p.Get(orig)
		k, _ := json.Marshal(string(orig))
		v, _ := json.Marshal(string(over))
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of strings, keeping the document order.
func (p *Partial) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("partial override must be a JSON object, is %v", tok)
	}
	p.m = linkedhashmap.New()
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("partial override has illegal key %v", tok)
		}
		var value string
		if err = dec.Decode(&value); err != nil {
			return fmt.Errorf("partial override for %q: %w", key, err)
		}
		p.Set(TypefaceID(key), TypefaceID(value))
	}
	_, err = dec.Token()
	return err
}

// MarshalFallbackOverride writes "legacy", a typeface id string, or an
// object for partial overrides.
func MarshalFallbackOverride(o FallbackOverride) ([]byte, error) {
	switch x := o.(type) {
	case Legacy:
		return json.Marshal(LegacyKeyword)
	case Direct:
		return json.Marshal(string(x.ID))
	case *Partial:
		return x.MarshalJSON()
	}
	return nil, fmt.Errorf("unknown fallback override type %T", o)
}

// UnmarshalFallbackOverride is the inverse of MarshalFallbackOverride.
func UnmarshalFallbackOverride(b []byte) (FallbackOverride, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		p := NewPartial()
		if err := p.UnmarshalJSON(b); err != nil {
			return nil, err
		}
		return p, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("fallback override must be a string or an object: %w", err)
	}
	if s == LegacyKeyword {
		return Legacy{}, nil
	}
	return Direct{ID: TypefaceID(s)}, nil
}
