package checktest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/sfntlite"
)

// FontBuilder assembles a minimal font file in memory so check tests
// do not need binary fixtures checked into the repository. It covers
// the tables the bundled checks read; anything else goes in verbatim
// through Table.
type FontBuilder struct {
	flavor   uint32
	tags     []string
	tables   map[string][]byte
	versions []string
}

// NewFont starts a TrueType-flavored font with no tables.
func NewFont() *FontBuilder {
	return &FontBuilder{flavor: sfntlite.FlavorTrueType, tables: map[string][]byte{}}
}

// Flavor overrides the sfnt version field.
func (b *FontBuilder) Flavor(flavor uint32) *FontBuilder {
	b.flavor = flavor
	return b
}

// Head adds a head table with the given unitsPerEm and fontRevision.
// The revision is rounded to the nearest 16.16 fixed-point value, as
// font compilers do.
func (b *FontBuilder) Head(unitsPerEm uint16, revision float64) *FontBuilder {
	table := make([]byte, 54)
	binary.BigEndian.PutUint32(table[4:], uint32(int32(math.Round(revision*(1<<16)))))
	binary.BigEndian.PutUint32(table[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(table[18:], unitsPerEm)
	return b.Table("head", table)
}

// VendorID adds an OS/2 table carrying the given achVendID.
func (b *FontBuilder) VendorID(id string) *FontBuilder {
	table := make([]byte, 96)
	copy(table[58:62], (id + "    ")[:4])
	return b.Table("OS/2", table)
}

// VersionString adds a name table entry with name ID 5. Multiple calls
// accumulate entries in one name table.
func (b *FontBuilder) VersionString(value string) *FontBuilder {
	b.versions = append(b.versions, value)
	return b
}

// Table adds a table verbatim, replacing any previous one with the
// same tag.
func (b *FontBuilder) Table(tag string, data []byte) *FontBuilder {
	if _, exists := b.tables[tag]; !exists {
		b.tags = append(b.tags, tag)
	}
	b.tables[tag] = data
	return b
}

// Bytes renders the font file.
func (b *FontBuilder) Bytes() []byte {
	tags := b.tags
	tables := b.tables
	if len(b.versions) > 0 {
		tags = append(append([]string{}, tags...), "name")
		tables = make(map[string][]byte, len(b.tables)+1)
		for tag, data := range b.tables {
			tables[tag] = data
		}
		tables["name"] = nameTable(b.versions)
	}

	buf := make([]byte, 12+len(tags)*16)
	binary.BigEndian.PutUint32(buf, b.flavor)
	binary.BigEndian.PutUint16(buf[4:], uint16(len(tags)))

	offset := len(buf)
	for i, tag := range tags {
		pos := 12 + i*16
		copy(buf[pos:], tag)
		binary.BigEndian.PutUint32(buf[pos+8:], uint32(offset))
		binary.BigEndian.PutUint32(buf[pos+12:], uint32(len(tables[tag])))
		offset += len(tables[tag])
	}
	for _, tag := range tags {
		buf = append(buf, tables[tag]...)
	}
	return buf
}

// Parse renders the font and runs it through the table reader.
func (b *FontBuilder) Parse(t testing.TB) *sfntlite.Font {
	t.Helper()
	font, err := sfntlite.Parse(b.Bytes())
	require.NoError(t, err, "built font does not parse")
	return font
}

// Seed writes the font to a temp file, parses it, and returns the
// seed map a run starts from: the parsed font under "font" and the
// file location under "font_path".
func (b *FontBuilder) Seed(t testing.TB) map[string]any {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.ttf")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o600))

	font, err := sfntlite.ParseFile(path)
	require.NoError(t, err, "built font does not parse")
	return map[string]any{
		"font":      font,
		"font_path": path,
	}
}

// nameTable renders name ID 5 records on the Windows platform, which
// is where real fonts keep their version strings.
func nameTable(versions []string) []byte {
	var storage []byte
	table := make([]byte, 6+len(versions)*12)
	binary.BigEndian.PutUint16(table[2:], uint16(len(versions)))
	binary.BigEndian.PutUint16(table[4:], uint16(len(table)))

	for i, value := range versions {
		var raw []byte
		for _, unit := range utf16.Encode([]rune(value)) {
			raw = binary.BigEndian.AppendUint16(raw, unit)
		}
		pos := 6 + i*12
		binary.BigEndian.PutUint16(table[pos:], 3)    // platform: Windows
		binary.BigEndian.PutUint16(table[pos+6:], 5)  // name ID: version string
		binary.BigEndian.PutUint16(table[pos+8:], uint16(len(raw)))
		binary.BigEndian.PutUint16(table[pos+10:], uint16(len(storage)))
		storage = append(storage, raw...)
	}
	return append(table, storage...)
}
