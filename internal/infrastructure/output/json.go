package output

import (
	"encoding/json"
	"io"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
)

// JSONFormatter renders a report as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter. With indent set the
// output is pretty-printed for humans; without it the report lands on
// a single line for log pipelines.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

// Format writes the report as JSON.
func (f *JSONFormatter) Format(report *execution.Report) error {
	encoder := json.NewEncoder(f.writer)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}
