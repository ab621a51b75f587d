package sfntlite

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf16"
)

const (
	headMagic     = 0x5F0F3CF5
	headTableSize = 54

	// achVendID occupies bytes 58..61 in every OS/2 table version.
	os2VendorIDStart = 58
	os2VendorIDEnd   = 62

	nameHeaderSize  = 6
	nameRecordSize  = 12
	versionStringID = 5
)

// parseHead reads unitsPerEm and fontRevision. A missing head table is
// not an error here; checks gate on its presence via a condition.
func (f *Font) parseHead(data []byte) error {
	table, ok := f.tableData(data, "head")
	if !ok {
		return nil
	}
	if len(table) < headTableSize {
		return fmt.Errorf("head table is %d bytes, want %d", len(table), headTableSize)
	}
	if magic := binary.BigEndian.Uint32(table[12:]); magic != headMagic {
		return fmt.Errorf("head table magic is 0x%08X, want 0x%08X", magic, headMagic)
	}

	revision := int32(binary.BigEndian.Uint32(table[4:]))
	f.FontRevision = big.NewRat(int64(revision), 1<<16)
	f.UnitsPerEm = binary.BigEndian.Uint16(table[18:])
	return nil
}

func (f *Font) parseOS2(data []byte) error {
	table, ok := f.tableData(data, "OS/2")
	if !ok {
		return nil
	}
	if len(table) < os2VendorIDEnd {
		return fmt.Errorf("OS/2 table is %d bytes, too short for a vendor ID", len(table))
	}
	f.VendorID = strings.TrimRight(string(table[os2VendorIDStart:os2VendorIDEnd]), " \x00")
	return nil
}

func (f *Font) parseName(data []byte) error {
	table, ok := f.tableData(data, "name")
	if !ok {
		return nil
	}
	if len(table) < nameHeaderSize {
		return fmt.Errorf("name table is %d bytes, want at least %d", len(table), nameHeaderSize)
	}

	count := int(binary.BigEndian.Uint16(table[2:]))
	storage := int(binary.BigEndian.Uint16(table[4:]))
	if nameHeaderSize+count*nameRecordSize > len(table) {
		return fmt.Errorf("name table directory truncated: %d records declared", count)
	}

	for i := 0; i < count; i++ {
		pos := nameHeaderSize + i*nameRecordSize
		nameID := binary.BigEndian.Uint16(table[pos+6:])
		if nameID != versionStringID {
			continue
		}
		platformID := binary.BigEndian.Uint16(table[pos:])
		length := int(binary.BigEndian.Uint16(table[pos+8:]))
		offset := int(binary.BigEndian.Uint16(table[pos+10:]))
		start := storage + offset
		if start+length > len(table) {
			return fmt.Errorf("name record %d points past the end of the name table", i)
		}
		f.VersionStrings = append(f.VersionStrings, decodeNameString(platformID, table[start:start+length]))
	}
	return nil
}

// decodeNameString decodes name table string data for the platforms
// fonts actually ship version strings on.
func decodeNameString(platformID uint16, raw []byte) string {
	switch platformID {
	case 0, 3: // Unicode and Windows records are UTF-16BE.
		units := make([]uint16, 0, len(raw)/2)
		for i := 0; i+1 < len(raw); i += 2 {
			units = append(units, binary.BigEndian.Uint16(raw[i:]))
		}
		return string(utf16.Decode(units))
	default: // Macintosh Roman is close enough to Latin-1 for version strings.
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		return string(runes)
	}
}
