// Package dimen implements CSS lengths as used by the cascade engine.
//
/*
BSD License

Copyright (c) 2017–21, Norbert Pillmayer (norbert@pillmayer.com)

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
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.  */
package dimen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the unit of a length.
type Unit int8

// Units understood by the engine.
const (
	None Unit = iota // unitless zero or the 'normal' keyword
	PX
	PT
	EM
	REM
	Percent
)

var unitNames = [...]string{"", "px", "pt", "em", "rem", "%"}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("Unit(%d)", int8(u))
}

// PointsPerPixel converts CSS points to CSS pixels.
const PointsPerPixel = 0.75

// Length is a CSS length.
type Length struct {
	Value  float64
	Unit   Unit
	normal bool
}

// Normal is the 'normal' keyword, e.g. for letter-spacing.
var Normal = Length{normal: true}

// Zero is a zero length.
var Zero = Length{}

// Px creates a length in pixels.
func Px(v float64) Length {
	return Length{Value: v, Unit: PX}
}

// Em creates a length relative to the font size.
func Em(v float64) Length {
	return Length{Value: v, Unit: EM}
}

// IsNormal is true for the 'normal' keyword.
func (l Length) IsNormal() bool {
	return l.normal
}

// Stringer implementation, producing CSS syntax.
func (l Length) String() string {
	if l.normal {
		return "normal"
	}
	v := strconv.FormatFloat(l.Value, 'f', -1, 64)
	if l.Value == 0 {
		return "0"
	}
	return v + l.Unit.String()
}

// Pixels resolves l for a given font size and root font size, both in
// pixels. 'normal' resolves to zero.
func (l Length) Pixels(fontSize, rootSize float64) float64 {
	switch l.Unit {
	case PX:
		return l.Value
	case PT:
		return l.Value / PointsPerPixel
	case EM:
		return l.Value * fontSize
	case REM:
		return l.Value * rootSize
	case Percent:
		return l.Value / 100 * fontSize
	}
	return 0
}

// ---------------------------------------------------------------------------

var lengthPattern = regexp.MustCompile(`^([+\-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+))(%|px|pt|em|rem)?$`)

// ParseLength parses a string to return a length. Syntax is CSS units,
// restricted to the units the engine understands, plus the 'normal' keyword.
// Non-zero lengths need a unit.
func ParseLength(s string) (Length, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "normal" {
		return Normal, nil
	}
	d := lengthPattern.FindStringSubmatch(s)
	if len(d) < 2 {
		return Zero, fmt.Errorf("format error parsing length %q", s)
	}
	v, err := strconv.ParseFloat(d[1], 64)
	if err != nil {
		return Zero, fmt.Errorf("format error parsing length %q", s)
	}
	var unit Unit
	switch d[2] {
	case "px":
		unit = PX
	case "pt":
		unit = PT
	case "em":
		unit = EM
	case "rem":
		unit = REM
	case "%":
		unit = Percent
	case "":
		if v != 0 {
			return Zero, fmt.Errorf("length %q needs a unit", s)
		}
	}
	return Length{Value: v, Unit: unit}, nil
}
