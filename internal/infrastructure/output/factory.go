package output

import (
	"fmt"
	"io"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
)

// Formatter renders a finished report to its writer.
type Formatter interface {
	Format(report *execution.Report) error
}

// Options tunes individual formatters. Not every formatter reads every
// field.
type Options struct {
	// Indent pretty-prints machine formats that support it.
	Indent bool
	// FontPath locates the checked font for formats that reference
	// artifacts.
	FontPath string
	// NoColor disables ANSI colors in terminal output.
	NoColor bool
}

// FormatterFactory builds formatters by name.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(
	format string,
	writer io.Writer,
	options Options,
) (Formatter, error) {
	switch format {
	case "table":
		formatter := NewTableFormatter(writer)
		formatter.EnableColor = !options.NoColor
		return formatter, nil
	case "json":
		return NewJSONFormatter(writer, options.Indent), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "junit":
		return NewJUnitFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer, options.FontPath), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns the list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"table", "json", "yaml", "junit", "sarif"}
}
