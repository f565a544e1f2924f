package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	"github.com/reglet-dev/qmcchain/internal/application/ports"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/output"
)

var planOpts = DefaultCommonOptions()

// planCmd assembles a request and prints the planned stages.
var planCmd = &cobra.Command{
	Use:   "plan <request.yaml>",
	Short: "Assemble the pipeline of a request",
	Long: `Load a request file, resolve every option from the default profiles and
print the stages that would be built, grouped by sweep point and ordered by
dependency wave. Nothing is run.`,
	Example: `  qmcchain plan diamond.yaml
  qmcchain plan scan.hcl --format json --indent
  qmcchain plan diamond.yaml -p lab-profiles.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(runPlan),
}

func init() {
	planOpts.RegisterFlags(planCmd, output.NewFormatterFactory().PlanFormats())
	rootCmd.AddCommand(planCmd)
}

func runPlan(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	opts := planOpts
	opts.Resolve(cmd, ctx.Container.SystemConfig())
	if err := opts.ValidateFlags(output.NewFormatterFactory().PlanFormats()); err != nil {
		return err
	}

	runCtx, cancel := opts.ApplyToContext(ctx.Context)
	defer cancel()

	resp, err := ctx.Container.PlanPipelineUseCase().Execute(runCtx, dto.PlanRequest{
		RequestPath:  args[0],
		ProfilePaths: opts.Profiles,
	})
	if err != nil {
		return err
	}

	ctx.Logger.Info("plan complete",
		"kind", resp.Kind,
		"points", len(resp.Points),
		"stages", resp.StageCount(),
		"duration", resp.Metadata.Duration)

	writer, closeWriter, err := opts.OpenWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		_ = closeWriter() // Best-effort cleanup
	}()

	formatter, err := ctx.Container.Formatters().Create(opts.Format, writer, ports.FormatterOptions{
		Indent:      opts.Indent,
		RequestPath: args[0],
	})
	if err != nil {
		return err
	}
	if t, ok := formatter.(*output.TableFormatter); ok {
		t.EnableColor = !opts.NoColor
	}
	if err := formatter.Format(resp); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}
