package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// TableFormatter formats responses as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the plan as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(resp *dto.PlanResponse) error {
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "Pipeline: %s\n", f.colorize(resp.Kind, colorBold))
	if !resp.Metadata.ProcessedAt.IsZero() {
		fmt.Fprintf(f.writer, "Planned:  %s\n", resp.Metadata.ProcessedAt.Format(time.RFC3339))
		fmt.Fprintf(f.writer, "Duration: %s\n", resp.Metadata.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(f.writer)

	if resp.StageCount() == 0 {
		fmt.Fprintln(f.writer, "No stages planned.")
		return nil
	}

	for _, p := range resp.Points {
		f.formatPoint(p)
	}

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	f.formatPlanSummary(resp)
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatPoint(p dto.PlanPoint) {
	header := p.Dir
	if p.Key != "" {
		header = fmt.Sprintf("%s (%s)", p.Dir, p.Key)
	}
	fmt.Fprintln(f.writer, f.colorize(header, colorBold))

	for _, s := range p.Stages {
		symbol, color := "●", colorGreen
		if s.Reused {
			symbol, color = "↺", colorGray
		}
		fmt.Fprintf(f.writer, "  %s [%d] %s", f.colorize(symbol, color), s.Wave, f.colorize(s.Label, colorCyan))
		if s.Path != "" {
			fmt.Fprintf(f.writer, "  %s", s.Path)
		}
		fmt.Fprintln(f.writer)

		if len(s.DependsOn) > 0 {
			fmt.Fprintf(f.writer, "       after: %s\n", strings.Join(s.DependsOn, ", "))
		}
		if len(s.Upstream) > len(s.DependsOn) {
			fmt.Fprintf(f.writer, "       upstream: %s\n", strings.Join(s.Upstream, ", "))
		}
		if len(s.Jastrows) > 0 {
			fmt.Fprintf(f.writer, "       jastrows: %s\n", strings.Join(s.Jastrows, ", "))
		}
		if len(s.Calculations) > 0 {
			fmt.Fprintf(f.writer, "       calculations: %s\n", strings.Join(s.Calculations, ", "))
		}
		if len(s.Options) > 0 && !s.Reused {
			fmt.Fprintf(f.writer, "       %s\n", f.formatOptions(s.Options))
		}
	}
	fmt.Fprintln(f.writer)
}

// formatOptions renders options as sorted key=value pairs.
func (f *TableFormatter) formatOptions(opts map[string]any) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", f.colorize(k, colorBlue), opts[k]))
	}
	return strings.Join(parts, " ")
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatPlanSummary(resp *dto.PlanResponse) {
	built, reused := 0, 0
	for _, p := range resp.Points {
		for _, s := range p.Stages {
			if s.Reused {
				reused++
			} else {
				built++
			}
		}
	}
	fmt.Fprintf(f.writer, "Points: %d   Stages: %d   Reused: %d\n", len(resp.Points), built, reused)
}

// FormatCheck writes the check diagnostics as a list.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatCheck(resp *dto.CheckResponse) error {
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "Request: %s\n", f.colorize(resp.RequestPath, colorBold))
	if resp.Kind != "" {
		fmt.Fprintf(f.writer, "Kind:    %s\n", resp.Kind)
	}
	fmt.Fprintln(f.writer)

	if len(resp.Diagnostics) == 0 {
		fmt.Fprintf(f.writer, "%s No problems found.\n", f.colorize("✓", colorGreen))
	}

	counts := map[string]int{}
	for _, d := range resp.Diagnostics {
		counts[d.Severity]++
		symbol, color := f.getSeverityInfo(d.Severity)
		fmt.Fprintf(f.writer, "%s %s: %s\n", f.colorize(symbol, color), f.colorize(d.Rule, color), d.Message)
		if d.Location != "" {
			fmt.Fprintf(f.writer, "  at %s\n", d.Location)
		}
	}

	if resp.Plan != nil {
		fmt.Fprintf(f.writer, "\nPlanned %d stages across %d points.\n", resp.Plan.StageCount(), len(resp.Plan.Points))
	}

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "  %s Errors:    %d\n", f.colorize("✗", colorRed), counts[dto.SeverityError])
	fmt.Fprintf(f.writer, "  %s Warnings:  %d\n", f.colorize("⚠", colorYellow), counts[dto.SeverityWarning])
	fmt.Fprintf(f.writer, "  %s Notes:     %d\n", f.colorize("ℹ", colorGray), counts[dto.SeverityNote])
	return nil
}

// getSeverityInfo returns a symbol and color for the given severity.
func (f *TableFormatter) getSeverityInfo(severity string) (string, string) {
	switch severity {
	case dto.SeverityError:
		return "✗", colorRed
	case dto.SeverityWarning:
		return "⚠", colorYellow
	case dto.SeverityNote:
		return "ℹ", colorGray
	default:
		return "?", colorReset
	}
}
