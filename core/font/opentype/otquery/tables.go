package otquery

import (
	"errors"
	"fmt"
)

// ErrNoTable is returned if a font does not contain a requested table.
var ErrNoTable = errors.New("font does not contain table")

// ErrTruncated is returned if a font binary ends prematurely.
var ErrTruncated = errors.New("font binary is truncated")

// TableRecord is an entry of the table directory.
type TableRecord struct {
	Tag            string
	Offset, Length uint32
}

// FontType returns the font type, encoded in the font header, as a string.
func FontType(b []byte) string {
	if len(b) < 4 {
		return "<empty>"
	}
	switch u32(b) {
	case 0x4f54544f: // OTTO
		return "OpenType (outlines)"
	case 0x00010000: // TrueType
		return "TrueType"
	case 0x74727565: // true
		return "TrueType (Mac legacy)"
	case 0x74746366: // ttcf
		return "TrueType collection"
	}
	return "<unknown>"
}

// TableDirectory reads the table directory of a font binary.
func TableDirectory(b []byte) (map[string]TableRecord, error) {
	if len(b) < 12 {
		return nil, ErrTruncated
	}
	n := int(u16(b[4:]))
	if len(b) < 12+16*n {
		return nil, ErrTruncated
	}
	dir := make(map[string]TableRecord, n)
	for i := 0; i < n; i++ {
		rec := b[12+16*i:]
		tr := TableRecord{
			Tag:    string(rec[:4]),
			Offset: u32(rec[8:]),
			Length: u32(rec[12:]),
		}
		if uint64(tr.Offset)+uint64(tr.Length) > uint64(len(b)) {
			return nil, fmt.Errorf("table %q exceeds font binary: %w", tr.Tag, ErrTruncated)
		}
		dir[tr.Tag] = tr
	}
	return dir, nil
}

// Table returns the bytes of the table with the given tag.
func Table(b []byte, tag string) ([]byte, error) {
	dir, err := TableDirectory(b)
	if err != nil {
		return nil, err
	}
	return tableFrom(b, dir, tag)
}

func tableFrom(b []byte, dir map[string]TableRecord, tag string) ([]byte, error) {
	tr, ok := dir[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, tag)
	}
	return b[tr.Offset : tr.Offset+tr.Length], nil
}

// --- Helpers ----------------------------------------------------------

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func i16(b []byte) int16 {
	return int16(b[0])<<8 | int16(b[1])<<0
}

func u32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// fixed converts a 16.16 fixed-point number.
func fixed(b []byte) float64 {
	return float64(int32(u32(b))) / 65536
}
