/*
Package opentype holds types describing OpenType fonts.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package opentype

import (
	"math"

	"golang.org/x/image/font/sfnt"
)

// --- Font metrics ----------------------------------------------------------

// FontMetricsInfo contains selected metric information for a font.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units // ad-hoc units per em
	Ascent, Descent sfnt.Units // ascender and descender
	LineGap         sfnt.Units // typographic line gap
	WeightClass     int        // usWeightClass from table OS/2, 0 if unknown
}

// Ratio returns u as a fraction of units-per-em.
func (m FontMetricsInfo) Ratio(u sfnt.Units) float64 {
	if m.UnitsPerEm == 0 {
		return 0
	}
	return float64(u) / float64(m.UnitsPerEm)
}

// --- Variations ------------------------------------------------------------

// WeightTag is the registered tag of the weight axis.
const WeightTag = "wght"

// Axis is a variation axis from table fvar.
type Axis struct {
	Tag                   string
	Minimum, Default, Max float64
}

// Clamp clamps v to the range of the axis.
func (a Axis) Clamp(v float64) float64 {
	return math.Max(a.Minimum, math.Min(a.Max, v))
}
