package otquery

import (
	"github.com/npillmayer/typecascade/core/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontMetrics retrieves selected metrics of a font.
//
// Ascent, descent and line gap are taken from table 'hhea'. If hhea carries
// no vertical metrics, the typographic values from 'OS/2' are used instead.
func FontMetrics(b []byte) (opentype.FontMetricsInfo, error) {
	metrics := opentype.FontMetricsInfo{}
	dir, err := TableDirectory(b)
	if err != nil {
		return metrics, err
	}
	head, err := tableFrom(b, dir, "head") // head is a required table
	if err != nil {
		return metrics, err
	}
	if len(head) < 20 {
		return metrics, ErrTruncated
	}
	metrics.UnitsPerEm = sfnt.Units(u16(head[18:]))
	if hhea, err := tableFrom(b, dir, "hhea"); err == nil && len(hhea) >= 10 {
		metrics.Ascent = sfnt.Units(i16(hhea[4:]))
		metrics.Descent = sfnt.Units(i16(hhea[6:]))
		metrics.LineGap = sfnt.Units(i16(hhea[8:]))
	}
	os2, err := tableFrom(b, dir, "OS/2")
	if err != nil || len(os2) < 74 {
		tracer().Debugf("font has no usable OS/2 table")
		return metrics, nil
	}
	metrics.WeightClass = int(u16(os2[4:]))
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		a := sfnt.Units(i16(os2[68:]))
		d := sfnt.Units(i16(os2[70:]))
		tracer().Debugf("override of ascent/descent from OS/2: %d/%d", a, d)
		metrics.Ascent, metrics.Descent = a, d
		metrics.LineGap = sfnt.Units(i16(os2[72:]))
	}
	return metrics, nil
}

// VariationAxes returns the variation axes of a font, read from table 'fvar'.
// Static fonts return an empty list.
func VariationAxes(b []byte) []opentype.Axis {
	fvar, err := Table(b, "fvar")
	if err != nil || len(fvar) < 16 {
		return nil
	}
	offset := int(u16(fvar[4:]))
	count := int(u16(fvar[8:]))
	size := int(u16(fvar[10:]))
	if size < 20 || offset+count*size > len(fvar) {
		tracer().Errorf("fvar table with invalid axis records")
		return nil
	}
	axes := make([]opentype.Axis, 0, count)
	for i := 0; i < count; i++ {
		rec := fvar[offset+i*size:]
		axes = append(axes, opentype.Axis{
			Tag:     string(rec[:4]),
			Minimum: fixed(rec[4:]),
			Default: fixed(rec[8:]),
			Max:     fixed(rec[12:]),
		})
	}
	return axes
}

// WeightAxis returns the 'wght' axis of a variable font.
func WeightAxis(b []byte) (opentype.Axis, bool) {
	for _, a := range VariationAxes(b) {
		if a.Tag == opentype.WeightTag {
			return a, true
		}
	}
	return opentype.Axis{}, false
}
