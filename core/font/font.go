/*
Package font is for typeface and font handling.

We stick to the following definitions:

* A "typeface" is an entry of a style's registry: either a font binary
uploaded by the user, or a font known only by its family name (a "system"
typeface).

* A "scalable font" is a parsed font binary. It is the handle the cascade
engine queries for glyph coverage, vertical metrics and weights.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Utility to view a character map of a font: http://torinak.com/font/lsfont.html

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font/opentype"
	"github.com/npillmayer/typecascade/core/font/opentype/otquery"
	"github.com/zeebo/xxh3"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'cascade.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.fonts")
}

// Handle is what the cascade engine needs to know about a parsed font binary.
type Handle interface {
	// GlyphIndex returns the glyph for a code-point; 0 means "not present".
	GlyphIndex(r rune) uint16
	UnitsPerEm() int
	Ascender() int
	Descender() int
	LineGap() int
	// WeightAxis returns the 'wght' axis of variable fonts.
	WeightAxis() (opentype.Axis, bool)
	// StaticWeight returns the weight class of the font, 0 if unknown.
	StaticWeight() int
	// Source is a reference usable as a font source in a stylesheet.
	Source() string
}

// ScalableFont is a parsed font binary.
type ScalableFont struct {
	Fontname string     // full font name from table 'name'
	Filepath string     // file path or upload file name
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
	URL      string     // source reference for stylesheets
	metrics  opentype.FontMetricsInfo
	wght     opentype.Axis
	variable bool
	hash     string
}

var _ Handle = (*ScalableFont)(nil)

// LoadOpenTypeFont reads and parses a font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses a font binary. Malformed binaries are reported as
// EINVALID errors.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes, hash: Fingerprint(fbytes)}
	if f.SFNT, err = sfnt.Parse(f.Binary); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "font binary cannot be parsed")
	}
	if f.metrics, err = otquery.FontMetrics(f.Binary); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "font binary has invalid metrics tables")
	}
	if f.metrics.UnitsPerEm == 0 {
		return nil, core.Error(core.EINVALID, "font binary declares zero units per em")
	}
	f.wght, f.variable = otquery.WeightAxis(f.Binary)
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	tracer().Debugf("parsed font %q, variable=%v", f.Fontname, f.variable)
	return f, nil
}

// Fingerprint returns a content hash for a font binary.
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}

// Fingerprint returns the content hash of the font binary.
func (sf *ScalableFont) Fingerprint() string {
	if sf.hash == "" {
		return Fingerprint(sf.Binary)
	}
	return sf.hash
}

// Family returns the family name from table 'name'.
func (sf *ScalableFont) Family() string {
	fam, err := sf.SFNT.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return fam
}

// GlyphIndex is part of interface Handle.
func (sf *ScalableFont) GlyphIndex(r rune) uint16 {
	var buf sfnt.Buffer // sfnt.Buffer is not safe for concurrent use
	gid, err := sf.SFNT.GlyphIndex(&buf, r)
	if err != nil {
		return 0
	}
	return uint16(gid)
}

func (sf *ScalableFont) UnitsPerEm() int { return int(sf.metrics.UnitsPerEm) }
func (sf *ScalableFont) Ascender() int   { return int(sf.metrics.Ascent) }
func (sf *ScalableFont) Descender() int  { return int(sf.metrics.Descent) }
func (sf *ScalableFont) LineGap() int    { return int(sf.metrics.LineGap) }

// WeightAxis is part of interface Handle.
func (sf *ScalableFont) WeightAxis() (opentype.Axis, bool) {
	return sf.wght, sf.variable
}

// StaticWeight is part of interface Handle.
func (sf *ScalableFont) StaticWeight() int {
	return sf.metrics.WeightClass
}

// Source is part of interface Handle.
func (sf *ScalableFont) Source() string {
	if sf.URL != "" {
		return sf.URL
	}
	return sf.Filepath
}

// Format returns the CSS format hint for the font's container type.
func (sf *ScalableFont) Format() string {
	if otquery.FontType(sf.Binary) == "OpenType (outlines)" {
		return "opentype"
	}
	return "truetype"
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else fails. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else fails.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	gofont, err := ParseOpenTypeFont(goregular.TTF)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	gofont.Filepath = "Go-Regular.ttf"
	return gofont
}

// --- Names -----------------------------------------------------------------

// NormalizeFontname normalizes a font name or font file name for comparison:
// directory and extension are stripped, spaces become underscores and the
// result is lower case.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	if fname == "" {
		return ""
	}
	fname = filepath.Base(filepath.ToSlash(fname))
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		switch strings.ToLower(fname[dot:]) {
		case ".ttf", ".otf", ".woff", ".woff2", ".ttc":
			fname = fname[:dot]
		}
	}
	fname = strings.ReplaceAll(fname, " ", "_")
	fname = strings.ToLower(fname)
	return fname
}
