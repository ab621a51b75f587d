package output

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// JUnitFormatter renders a report as JUnit XML for CI systems.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the report as JUnit XML. Warnings and info findings
// have no JUnit equivalent, so their checks count as passing; the
// findings still show up in the failure content of failing checks.
func (f *JUnitFormatter) Format(report *execution.Report) error {
	// Create a single test suite for the profile run
	suite := JUnitTestSuite{
		Name:     report.ProfileName,
		Tests:    report.Summary.Total,
		Failures: report.Summary.Failed,
		Errors:   report.Summary.Errored,
		Skipped:  report.Summary.Skipped,
		Time:     report.Duration.Seconds(),
	}

	for _, outcome := range report.Outcomes {
		c := JUnitTestCase{
			Name:      outcome.CheckID.String(), // Check ID as test name
			ClassName: outcome.Description,      // Check description as classname
			Time:      outcome.Duration.Seconds(),
		}

		switch outcome.Status {
		case values.StatusFail:
			c.Failure = &JUnitFailure{
				Message: firstMessage(outcome, values.StatusFail),
				Content: formatFindings(outcome),
			}
		case values.StatusError:
			c.Error = &JUnitError{
				Message: firstMessage(outcome, values.StatusError),
				Content: formatFindings(outcome),
			}
		case values.StatusSkip:
			c.Skipped = &JUnitSkipped{
				Message: outcome.SkipReason,
			}
		}

		suite.TestCases = append(suite.TestCases, c)
	}

	suites := JUnitTestSuites{
		Name:       "fontkiln",
		Tests:      report.Summary.Total,
		Failures:   report.Summary.Failed,
		Errors:     report.Summary.Errored,
		Time:       report.Duration.Seconds(),
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

// firstMessage returns the message of the first finding with the given
// status, so the JUnit message attribute names the concrete problem.
func firstMessage(outcome execution.Outcome, status values.Status) string {
	for _, finding := range outcome.Findings {
		if finding.Status == status {
			return finding.Message
		}
	}
	return string(status)
}

func formatFindings(outcome execution.Outcome) string {
	var out string
	for _, finding := range outcome.Findings {
		if finding.Status != values.StatusPass {
			out += fmt.Sprintf("[%s] %s: %s\n", finding.Status, finding.Code, finding.Message)
		}
	}
	return out
}
