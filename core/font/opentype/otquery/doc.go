/*
Package otquery queries metrics and other information from OpenType fonts.

Package otquery reads a few tables of a font binary directly: the table
directory, 'head', 'hhea', 'OS/2' and 'fvar'. Golang's sfnt package covers
character maps and names, but does not expose vertical metrics in font
units, the weight class or variation axes, which the cascade engine needs
to compute metric overrides and to clamp weights.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'cascade.fonts'
func tracer() tracing.Trace {
	return tracing.Select("cascade.fonts")
}
