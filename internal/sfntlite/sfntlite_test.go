package sfntlite

import (
	"encoding/binary"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fontBuilder assembles a syntactically valid sfnt file in memory so
// tests do not need binary fixtures on disk.
type fontBuilder struct {
	flavor uint32
	tags   []string
	tables map[string][]byte
}

func newFontBuilder() *fontBuilder {
	return &fontBuilder{flavor: FlavorTrueType, tables: map[string][]byte{}}
}

func (b *fontBuilder) withFlavor(flavor uint32) *fontBuilder {
	b.flavor = flavor
	return b
}

func (b *fontBuilder) withTable(tag string, data []byte) *fontBuilder {
	b.tags = append(b.tags, tag)
	b.tables[tag] = data
	return b
}

func (b *fontBuilder) build() []byte {
	buf := make([]byte, offsetTableSize+len(b.tags)*tableRecordSize)
	binary.BigEndian.PutUint32(buf, b.flavor)
	binary.BigEndian.PutUint16(buf[4:], uint16(len(b.tags)))

	offset := len(buf)
	for i, tag := range b.tags {
		pos := offsetTableSize + i*tableRecordSize
		copy(buf[pos:], tag)
		binary.BigEndian.PutUint32(buf[pos+8:], uint32(offset))
		binary.BigEndian.PutUint32(buf[pos+12:], uint32(len(b.tables[tag])))
		offset += len(b.tables[tag])
	}
	for _, tag := range b.tags {
		buf = append(buf, b.tables[tag]...)
	}
	return buf
}

func headTable(unitsPerEm uint16, revision float64) []byte {
	table := make([]byte, headTableSize)
	binary.BigEndian.PutUint32(table[4:], uint32(int32(math.Round(revision*(1<<16)))))
	binary.BigEndian.PutUint32(table[12:], headMagic)
	binary.BigEndian.PutUint16(table[18:], unitsPerEm)
	return table
}

func os2Table(vendorID string) []byte {
	table := make([]byte, os2VendorIDEnd+34)
	copy(table[os2VendorIDStart:], (vendorID + "    ")[:4])
	return table
}

type nameEntry struct {
	platformID uint16
	nameID     uint16
	value      string
}

func nameTable(entries ...nameEntry) []byte {
	var storage []byte
	table := make([]byte, nameHeaderSize+len(entries)*nameRecordSize)
	binary.BigEndian.PutUint16(table[2:], uint16(len(entries)))
	binary.BigEndian.PutUint16(table[4:], uint16(len(table)))

	for i, e := range entries {
		var raw []byte
		if e.platformID == 1 {
			raw = []byte(e.value)
		} else {
			for _, unit := range utf16.Encode([]rune(e.value)) {
				raw = binary.BigEndian.AppendUint16(raw, unit)
			}
		}
		pos := nameHeaderSize + i*nameRecordSize
		binary.BigEndian.PutUint16(table[pos:], e.platformID)
		binary.BigEndian.PutUint16(table[pos+6:], e.nameID)
		binary.BigEndian.PutUint16(table[pos+8:], uint16(len(raw)))
		binary.BigEndian.PutUint16(table[pos+10:], uint16(len(storage)))
		storage = append(storage, raw...)
	}
	return append(table, storage...)
}

func Test_Parse_TrueTypeFont(t *testing.T) {
	data := newFontBuilder().
		withTable("head", headTable(1000, 1.5)).
		withTable("OS/2", os2Table("ACME")).
		withTable("name", nameTable(
			nameEntry{platformID: 3, nameID: versionStringID, value: "Version 1.500"},
			nameEntry{platformID: 3, nameID: 1, value: "Family Name"},
		)).
		build()

	font, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, FlavorTrueType, font.Flavor)
	assert.True(t, font.IsTrueType())
	assert.False(t, font.IsCFF())
	assert.Equal(t, 3, font.NumTables())
	assert.True(t, font.HasTable("head"))
	assert.False(t, font.HasTable("glyf"))
	assert.Equal(t, uint16(1000), font.UnitsPerEm)
	assert.Equal(t, 0, font.FontRevision.Cmp(big.NewRat(3, 2)))
	assert.Equal(t, "ACME", font.VendorID)
	assert.Equal(t, []string{"Version 1.500"}, font.VersionStrings)
}

func Test_Parse_CFFFlavor(t *testing.T) {
	data := newFontBuilder().
		withFlavor(FlavorCFF).
		withTable("head", headTable(2048, 2.0)).
		build()

	font, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, font.IsCFF())
	assert.False(t, font.IsTrueType())
}

func Test_Parse_FontRevisionKeepsFixedPointValue(t *testing.T) {
	// 1.001 is not representable in 16.16 fixed point; the nearest
	// value is 65602/65536. The version checks depend on seeing that
	// exact fraction rather than a re-rounded decimal.
	data := newFontBuilder().withTable("head", headTable(1000, 1.001)).build()

	font, err := Parse(data)
	require.NoError(t, err)

	assert.NotEqual(t, 0, font.FontRevision.Cmp(big.NewRat(1001, 1000)))
	assert.Equal(t, 0, font.FontRevision.Cmp(big.NewRat(65602, 65536)))
}

func Test_Parse_FontWithoutHeadTable(t *testing.T) {
	data := newFontBuilder().withTable("OS/2", os2Table("NONE")).build()

	font, err := Parse(data)
	require.NoError(t, err)

	assert.False(t, font.HasTable("head"))
	assert.Nil(t, font.FontRevision)
	assert.Zero(t, font.UnitsPerEm)
}

func Test_Parse_VendorIDPaddingStripped(t *testing.T) {
	data := newFontBuilder().withTable("OS/2", os2Table("AB")).build()

	font, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "AB", font.VendorID)
}

func Test_Parse_MacintoshVersionString(t *testing.T) {
	data := newFontBuilder().
		withTable("name", nameTable(nameEntry{platformID: 1, nameID: versionStringID, value: "Version 2.001"})).
		build()

	font, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Version 2.001"}, font.VersionStrings)
}

func Test_Parse_Rejects(t *testing.T) {
	truncatedDirectory := newFontBuilder().build()
	binary.BigEndian.PutUint16(truncatedDirectory[4:], 4)

	pastEOF := newFontBuilder().withTable("head", headTable(1000, 1.0)).build()
	binary.BigEndian.PutUint32(pastEOF[offsetTableSize+12:], 1<<20)

	badMagic := headTable(1000, 1.0)
	binary.BigEndian.PutUint32(badMagic[12:], 0xDEADBEEF)

	badName := nameTable(nameEntry{platformID: 3, nameID: versionStringID, value: "Version 1.0"})
	binary.BigEndian.PutUint16(badName[16:], 0xFFFF) // record offset far past storage

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"empty file", nil, "too short"},
		{"wrong version field", []byte("this is not a font file!"), "not an sfnt font"},
		{"truncated directory", truncatedDirectory, "table directory truncated"},
		{"table past end of file", pastEOF, "runs past the end"},
		{"short head table", newFontBuilder().withTable("head", make([]byte, 10)).build(), "head table is 10 bytes"},
		{"bad head magic", newFontBuilder().withTable("head", badMagic).build(), "head table magic"},
		{"short OS/2 table", newFontBuilder().withTable("OS/2", make([]byte, 20)).build(), "too short for a vendor ID"},
		{"name record out of range", newFontBuilder().withTable("name", badName).build(), "points past the end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_ParseFile(t *testing.T) {
	data := newFontBuilder().withTable("head", headTable(1000, 1.0)).build()
	path := filepath.Join(t.TempDir(), "test.ttf")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	font, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, int64(len(data)), font.FileSize)
	assert.Equal(t, uint16(1000), font.UnitsPerEm)
}

func Test_ParseFile_MissingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.ttf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read font file")
}

func Test_ParseFile_NamesFileOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(path, []byte("not a font, sorry..."), 0o600))

	_, err := ParseFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.ttf")
}
