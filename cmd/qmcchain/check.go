package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	"github.com/reglet-dev/qmcchain/internal/application/ports"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/output"
)

var checkOpts = DefaultCommonOptions()

// checkCmd validates a request and reports diagnostics.
var checkCmd = &cobra.Command{
	Use:   "check <request.yaml>",
	Short: "Validate a request and report problems",
	Long: `Load and assemble a request like plan does, but report every problem as a
diagnostic instead of stopping at the first error. The command exits non-zero
when any diagnostic is an error.

Formats:
  table   Human-readable list (default)
  sarif   SARIF 2.1.0 for code scanning tools
  junit   JUnit XML for CI systems
  json, yaml`,
	Example: `  qmcchain check diamond.yaml
  qmcchain check diamond.yaml --format sarif -o results.sarif`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(runCheck),
}

func init() {
	checkOpts.RegisterFlags(checkCmd, output.NewFormatterFactory().SupportedFormats())
	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	opts := checkOpts
	opts.Resolve(cmd, ctx.Container.SystemConfig())
	if err := opts.ValidateFlags(ctx.Container.Formatters().SupportedFormats()); err != nil {
		return err
	}

	runCtx, cancel := opts.ApplyToContext(ctx.Context)
	defer cancel()

	resp, err := ctx.Container.CheckRequestUseCase().Execute(runCtx, dto.CheckRequest{
		RequestPath:  args[0],
		ProfilePaths: opts.Profiles,
	})
	if err != nil {
		return err
	}

	writer, closeWriter, err := opts.OpenWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		_ = closeWriter() // Best-effort cleanup
	}()

	formatter, err := ctx.Container.Formatters().CreateCheck(opts.Format, writer, ports.FormatterOptions{
		Indent:      opts.Indent,
		RequestPath: args[0],
	})
	if err != nil {
		return err
	}
	if t, ok := formatter.(*output.TableFormatter); ok {
		t.EnableColor = !opts.NoColor
	}
	if err := formatter.FormatCheck(resp); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Return non-zero exit code if there were errors
	errorsFound := 0
	for _, d := range resp.Diagnostics {
		if d.Severity == dto.SeverityError {
			errorsFound++
		}
	}
	if errorsFound > 0 {
		return fmt.Errorf("check failed: %d errors, %d diagnostics", errorsFound, len(resp.Diagnostics))
	}
	return nil
}
