// Package percent implements a simple type for percentage values, as used for
// font scales and vertical-metric overrides.
package percent

import (
	"math"
	"strconv"
	"strings"
)

// Percent is a percentage value. 100 is the identity for scales.
// Values may exceed 100, but are never negative.
type Percent float64

// Identity is the no-op scale.
const Identity Percent = 100

func FromInt(n int) Percent {
	if n <= 0 {
		return Percent(0)
	}
	return Percent(n)
}

func FromFloat(f float64) Percent {
	switch {
	case f <= 0 || math.IsNaN(f) || math.IsInf(f, -1):
		return Percent(0)
	case math.IsInf(f, 1):
		return Percent(math.MaxFloat32)
	}
	return Percent(f)
}

// FromRatio converts a ratio (e.g. 0.8) into a percentage (80%).
func FromRatio(r float64) Percent {
	return FromFloat(r * 100)
}

// FromString parses "80%" or "80".
func FromString(s string) (Percent, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Percent(0), err
	}
	return FromFloat(f), nil
}

// Ratio returns p as a ratio, i.e. 80% is 0.8.
func (p Percent) Ratio() float64 {
	return float64(p) / 100
}

// IsIdentity is true for 100%, up to rounding to 1/100 of a percent.
func (p Percent) IsIdentity() bool {
	return math.Abs(float64(p-Identity)) < 0.005
}

// String formats p with at most two decimals, e.g. "87.5%".
func (p Percent) String() string {
	return strconv.FormatFloat(math.Round(float64(p)*100)/100, 'f', -1, 64) + "%"
}
