// Package sfntlite reads the few sfnt table fields the bundled checks
// inspect. It is deliberately not a font library: no glyph data, no
// metrics, no shaping — just the offset table, the head table, the
// OS/2 vendor ID and the name table version strings.
package sfntlite

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// Flavors a font file can declare in its sfnt version field.
const (
	// FlavorTrueType marks fonts with glyf outlines.
	FlavorTrueType uint32 = 0x00010000
	// FlavorCFF ("OTTO") marks fonts with CFF outlines.
	FlavorCFF uint32 = 0x4F54544F
)

const (
	offsetTableSize = 12
	tableRecordSize = 16
)

// TableRecord locates one table inside the font file.
type TableRecord struct {
	Tag    string
	Offset uint32
	Length uint32
}

// Font is a parsed font file, reduced to the fields checks ask about.
type Font struct {
	// Flavor is the sfnt version field of the offset table.
	Flavor uint32

	// Tables lists the table directory in file order.
	Tables []TableRecord

	// UnitsPerEm and FontRevision come from the head table and stay
	// zero/nil when the font has none. FontRevision keeps the exact
	// 16.16 fixed-point value: the binary format cannot represent
	// e.g. 1.001 precisely and the version checks care about the
	// remainder.
	UnitsPerEm   uint16
	FontRevision *big.Rat

	// VendorID is the OS/2 achVendID with trailing padding stripped,
	// empty when the font has no OS/2 table.
	VendorID string

	// VersionStrings holds every decoded name table entry with name
	// ID 5, in record order.
	VersionStrings []string

	// FileSize is the size of the source file in bytes, zero when the
	// font was parsed from memory.
	FileSize int64

	byTag map[string]TableRecord
}

// Parse reads a font from memory.
func Parse(data []byte) (*Font, error) {
	if len(data) < offsetTableSize {
		return nil, fmt.Errorf("file too short for an sfnt offset table: %d bytes", len(data))
	}
	flavor := binary.BigEndian.Uint32(data)
	if flavor != FlavorTrueType && flavor != FlavorCFF {
		return nil, fmt.Errorf("not an sfnt font: version 0x%08X", flavor)
	}

	numTables := int(binary.BigEndian.Uint16(data[4:]))
	if offsetTableSize+numTables*tableRecordSize > len(data) {
		return nil, fmt.Errorf("table directory truncated: %d tables declared in a %d byte file", numTables, len(data))
	}

	font := &Font{
		Flavor: flavor,
		Tables: make([]TableRecord, 0, numTables),
		byTag:  make(map[string]TableRecord, numTables),
	}
	for i := 0; i < numTables; i++ {
		pos := offsetTableSize + i*tableRecordSize
		rec := TableRecord{
			Tag:    string(data[pos : pos+4]),
			Offset: binary.BigEndian.Uint32(data[pos+8:]),
			Length: binary.BigEndian.Uint32(data[pos+12:]),
		}
		if int64(rec.Offset)+int64(rec.Length) > int64(len(data)) {
			return nil, fmt.Errorf("table %q runs past the end of the file", rec.Tag)
		}
		font.Tables = append(font.Tables, rec)
		font.byTag[rec.Tag] = rec
	}

	if err := font.parseHead(data); err != nil {
		return nil, err
	}
	if err := font.parseOS2(data); err != nil {
		return nil, err
	}
	if err := font.parseName(data); err != nil {
		return nil, err
	}
	return font, nil
}

// ParseFile reads a font from disk and records its file size.
func ParseFile(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read font file: %w", err)
	}
	font, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	font.FileSize = int64(len(data))
	return font, nil
}

// NumTables returns the number of entries in the table directory.
func (f *Font) NumTables() int {
	return len(f.Tables)
}

// HasTable reports whether the table directory contains tag.
func (f *Font) HasTable(tag string) bool {
	_, ok := f.byTag[tag]
	return ok
}

// Table returns the directory record for tag.
func (f *Font) Table(tag string) (TableRecord, bool) {
	rec, ok := f.byTag[tag]
	return rec, ok
}

// IsTrueType reports whether the font declares glyf outlines.
func (f *Font) IsTrueType() bool {
	return f.Flavor == FlavorTrueType
}

// IsCFF reports whether the font declares CFF outlines.
func (f *Font) IsCFF() bool {
	return f.Flavor == FlavorCFF
}

func (f *Font) tableData(data []byte, tag string) ([]byte, bool) {
	rec, ok := f.byTag[tag]
	if !ok {
		return nil, false
	}
	return data[rec.Offset : rec.Offset+rec.Length], true
}
