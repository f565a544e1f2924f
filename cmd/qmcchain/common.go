package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reglet-dev/qmcchain/internal/infrastructure/system"
)

// CommonOptions contains flags shared by plan and check.
type CommonOptions struct {
	// Output
	Format  string
	OutFile string

	// Profile files merged after the configured ones
	Profiles []string

	// Execution
	Timeout time.Duration

	// Flags (bools grouped for alignment)
	Indent  bool
	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 30 * time.Second,
		Format:  "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command, formats []string) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Timeout for the whole run (0 to disable)")

	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		fmt.Sprintf("Output format: %v", formats))
	cmd.Flags().StringVarP(&opts.OutFile, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().StringSliceVarP(&opts.Profiles, "profiles", "p", nil,
		"Profile files to merge over the built-in defaults (repeatable)")
	cmd.Flags().BoolVar(&opts.Indent, "indent", false,
		"Pretty-print JSON output")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// Resolve fills unset options from the environment and the system config.
// Explicit flags win, then QMCCHAIN_* variables, then the config file.
// Profile files accumulate: configured ones first, then QMCCHAIN_PROFILES
// (a path list), then --profiles.
func (opts *CommonOptions) Resolve(cmd *cobra.Command, cfg *system.Config) {
	if !cmd.Flags().Changed("format") {
		opts.Format = viper.GetString("output.format")
	}
	if !cmd.Flags().Changed("indent") {
		opts.Indent = viper.GetBool("output.indent")
	}
	if !cmd.Flags().Changed("no-color") && viper.IsSet("output.color") {
		opts.NoColor = !viper.GetBool("output.color")
	}

	var profiles []string
	if cfg != nil {
		profiles = append(profiles, cfg.Profiles...)
	}
	if env, ok := os.LookupEnv(EnvPrefix + "_PROFILES"); ok && env != "" {
		profiles = append(profiles, filepath.SplitList(env)...)
	}
	opts.Profiles = append(profiles, opts.Profiles...)
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	// No timeout - return no-op cancel
	return ctx, func() {}
}

// ValidateFlags validates common options against the formats a command supports.
func (opts *CommonOptions) ValidateFlags(formats []string) error {
	if opts.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative")
	}
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, formats)
	}
	return nil
}

// OpenWriter returns the output destination and a close function.
func (opts *CommonOptions) OpenWriter(stdout io.Writer) (io.Writer, func() error, error) {
	if opts.OutFile == "" {
		return stdout, func() error { return nil }, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(opts.OutFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, file.Close, nil
}
