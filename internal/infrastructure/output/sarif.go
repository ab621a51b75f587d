// Package output renders finished reports for terminals and machines.
package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
)

// SARIFFormatter renders a report as SARIF 2.1.0 JSON.
// Checks become SARIF rules and outcomes become results located at the
// checked font file.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout, "font.ttf")
//	if err := formatter.Format(report); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer   io.Writer
	fontPath string
}

// NewSARIFFormatter creates a new SARIF formatter.
// fontPath locates the checked font so results can point at it.
func NewSARIFFormatter(writer io.Writer, fontPath string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:   writer,
		fontPath: fontPath,
	}
}

// Format writes the report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *execution.Report) error {
	doc := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("fontkiln", "https://github.com/fontkiln/fontkiln")
	run.Tool.Driver.Version = &report.ToolVersion
	run.Tool.Driver.Organization = ptrString("fontkiln")

	mapper := newSARIFMapper(report, f.fontPath)
	mapper.mapToRun(run)

	doc.AddRun(run)

	if err := doc.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}
