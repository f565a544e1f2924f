// Package output provides formatters for plan and check responses.
package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	"github.com/reglet-dev/qmcchain/internal/version"
)

// SARIFFormatter formats check responses as SARIF 2.1.0 JSON.
// Diagnostic rules become SARIF rules and each diagnostic becomes a result
// located in the request file.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout, "request.yaml")
//	if err := formatter.FormatCheck(resp); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer      io.Writer
	requestPath string
}

// NewSARIFFormatter creates a new SARIF formatter.
// requestPath is used when a response does not name its request.
func NewSARIFFormatter(writer io.Writer, requestPath string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:      writer,
		requestPath: requestPath,
	}
}

// FormatCheck writes the check response as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) FormatCheck(resp *dto.CheckResponse) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("qmcchain", "https://github.com/reglet-dev/qmcchain")
	toolVersion := version.Get().Version
	run.Tool.Driver.Version = &toolVersion

	path := resp.RequestPath
	if path == "" {
		path = f.requestPath
	}
	mapper := newSARIFMapper(resp, path)
	mapper.mapToRun(run)

	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}
