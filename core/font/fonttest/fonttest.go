/*
Package fonttest provides font handles with a configurable character
map, for testing scripts that the Go fonts do not cover.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fonttest

import (
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/font/opentype"
)

// Font is a fake font handle.
type Font struct {
	Name    string
	Covered map[rune]uint16
	Axis    *opentype.Axis // weight axis of variable fonts
	Weight  int            // static weight class
	UPM     int
	Asc     int
	Desc    int
	Gap     int
}

var _ font.Handle = (*Font)(nil)

// New creates a fake font covering the runes of chars.
func New(name, chars string) *Font {
	f := &Font{
		Name:    name,
		Covered: make(map[rune]uint16),
		Weight:  400,
		UPM:     1000,
		Asc:     800,
		Desc:    -200,
	}
	gid := uint16(1)
	for _, r := range chars {
		if _, ok := f.Covered[r]; !ok {
			f.Covered[r] = gid
			gid++
		}
	}
	return f
}

// Variable makes f a variable font with a 'wght' axis.
func (f *Font) Variable(min, def, max float64) *Font {
	f.Axis = &opentype.Axis{Tag: opentype.WeightTag, Minimum: min, Default: def, Max: max}
	return f
}

func (f *Font) GlyphIndex(r rune) uint16 { return f.Covered[r] }
func (f *Font) UnitsPerEm() int          { return f.UPM }
func (f *Font) Ascender() int            { return f.Asc }
func (f *Font) Descender() int           { return f.Desc }
func (f *Font) LineGap() int             { return f.Gap }
func (f *Font) StaticWeight() int        { return f.Weight }
func (f *Font) Source() string           { return "fonts/" + f.Name + ".ttf" }

func (f *Font) WeightAxis() (opentype.Axis, bool) {
	if f.Axis == nil {
		return opentype.Axis{}, false
	}
	return *f.Axis, true
}
