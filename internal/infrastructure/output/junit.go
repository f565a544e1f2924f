package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
)

// JUnitFormatter formats responses as JUnit XML so CI systems can show
// planned stages and check findings as test cases.
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
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes one suite per plan point with one case per stage.
// Stages reused from an earlier point are reported as skipped.
func (f *JUnitFormatter) Format(resp *dto.PlanResponse) error {
	suites := JUnitTestSuites{
		Name: "qmcchain plan " + resp.Kind,
		Time: resp.Metadata.Duration.Seconds(),
	}

	for _, p := range resp.Points {
		suite := JUnitTestSuite{Name: p.Dir}
		for _, s := range p.Stages {
			c := JUnitTestCase{
				Name:      s.Label,
				ClassName: p.Dir,
				SystemOut: describeStage(s),
			}
			if s.Reused {
				c.Skipped = &JUnitSkipped{Message: "reused from an earlier point"}
				suite.Skipped++
			}
			suite.TestCases = append(suite.TestCases, c)
		}
		suite.Tests = len(suite.TestCases)
		suites.Tests += suite.Tests
		suites.TestSuites = append(suites.TestSuites, suite)
	}
	return f.write(suites)
}

// FormatCheck writes one case per diagnostic. Errors fail, warnings are
// skipped and notes pass. A clean check is a single passing case.
func (f *JUnitFormatter) FormatCheck(resp *dto.CheckResponse) error {
	suite := JUnitTestSuite{Name: resp.RequestPath}

	for _, d := range resp.Diagnostics {
		c := JUnitTestCase{
			Name:      d.Rule,
			ClassName: d.Location,
		}
		switch d.Severity {
		case dto.SeverityError:
			c.Failure = &JUnitFailure{Message: d.Message, Content: d.Location}
			suite.Failures++
		case dto.SeverityWarning:
			c.Skipped = &JUnitSkipped{Message: d.Message}
			suite.Skipped++
		default:
			c.SystemOut = d.Message
		}
		suite.TestCases = append(suite.TestCases, c)
	}
	if len(suite.TestCases) == 0 {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{Name: "assemble", ClassName: resp.RequestPath})
	}
	suite.Tests = len(suite.TestCases)

	return f.write(JUnitTestSuites{
		Name:       "qmcchain check",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		TestSuites: []JUnitTestSuite{suite},
	})
}

func (f *JUnitFormatter) write(suites JUnitTestSuites) error {
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

func describeStage(s dto.PlannedStage) string {
	var out strings.Builder
	fmt.Fprintf(&out, "wave: %d\n", s.Wave)
	if s.Path != "" {
		fmt.Fprintf(&out, "path: %s\n", s.Path)
	}
	if len(s.DependsOn) > 0 {
		fmt.Fprintf(&out, "after: %s\n", strings.Join(s.DependsOn, ", "))
	}
	if len(s.Upstream) > 0 {
		fmt.Fprintf(&out, "upstream: %s\n", strings.Join(s.Upstream, ", "))
	}
	return out.String()
}
