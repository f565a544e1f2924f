package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// InitOptions holds the answers used to write a request template.
type InitOptions struct {
	Kind      string
	System    string
	Boundary  string
	BasePath  string
	Output    string
	Pseudized bool

	NoInteractive bool
	Force         bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter request file",
	Long: `Generate a request file for a chain or one of the sweeps. Without
--no-interactive the missing answers are asked for.`,
	Example: `  qmcchain init
  qmcchain init --kind ecut_scan --system diamond --no-interactive`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("kind", "", "Request kind: chain, ecut_scan, system_scan, system_parameter_scan")
	initCmd.Flags().String("system", "", "System name")
	initCmd.Flags().String("boundary", entities.BoundaryPeriodic, "Boundary condition: periodic or open")
	initCmd.Flags().Bool("pseudized", true, "Use pseudopotentials")
	initCmd.Flags().String("basepath", "runs", "Directory stage paths are rooted at")
	initCmd.Flags().StringP("output", "o", "request.yaml", "Output file path")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	initCmd.Flags().Bool("no-interactive", false, "Disable interactive prompts")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	opts := InitOptions{}
	opts.Kind, _ = cmd.Flags().GetString("kind")
	opts.System, _ = cmd.Flags().GetString("system")
	opts.Boundary, _ = cmd.Flags().GetString("boundary")
	opts.Pseudized, _ = cmd.Flags().GetBool("pseudized")
	opts.BasePath, _ = cmd.Flags().GetString("basepath")
	opts.Output, _ = cmd.Flags().GetString("output")
	opts.Force, _ = cmd.Flags().GetBool("force")
	opts.NoInteractive, _ = cmd.Flags().GetBool("no-interactive")

	if !opts.NoInteractive {
		if err := askInitOptions(cmd, &opts); err != nil {
			return err
		}
	}
	if opts.Kind == "" {
		opts.Kind = dto.KindChain
	}
	if opts.System == "" {
		opts.System = "system"
	}

	data, err := RenderRequestTemplate(opts)
	if err != nil {
		return err
	}

	if !opts.Force {
		if _, err := os.Stat(opts.Output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.Output)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := os.WriteFile(opts.Output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Request saved to %s\n", opts.Output)
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'qmcchain plan %s' to see the planned stages.\n", opts.Output)
	return nil
}

func askInitOptions(cmd *cobra.Command, opts *InitOptions) error {
	if opts.Kind == "" {
		err := huh.NewSelect[string]().
			Title("What should the request build?").
			Options(
				huh.NewOption("Single chain (scf → p2q → opt → vmc → dmc)", dto.KindChain),
				huh.NewOption("Plane-wave cutoff scan", dto.KindEcutScan),
				huh.NewOption("Scan over explicit systems", dto.KindSystemScan),
				huh.NewOption("Scan over a generator parameter", dto.KindSystemParameterScan),
			).
			Value(&opts.Kind).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.System == "" {
		err := huh.NewInput().
			Title("System name").
			Value(&opts.System).
			Run()
		if err != nil {
			return err
		}
	}

	if !cmd.Flags().Changed("boundary") {
		err := huh.NewSelect[string]().
			Title("Boundary condition").
			Options(
				huh.NewOption("Periodic", entities.BoundaryPeriodic),
				huh.NewOption("Open", entities.BoundaryOpen),
			).
			Value(&opts.Boundary).
			Run()
		if err != nil {
			return err
		}
	}

	if !cmd.Flags().Changed("pseudized") {
		err := huh.NewConfirm().
			Title("Use pseudopotentials?").
			Value(&opts.Pseudized).
			Run()
		if err != nil {
			return err
		}
	}
	return nil
}

type requestTemplate struct {
	Kind     string           `yaml:"kind"`
	BasePath string           `yaml:"basepath"`
	System   *entities.System `yaml:"system,omitempty"`
	Options  map[string]any   `yaml:"options"`
	Sweep    map[string]any   `yaml:"sweep,omitempty"`
}

// RenderRequestTemplate returns a starter request for opts as YAML.
func RenderRequestTemplate(opts InitOptions) ([]byte, error) {
	system := &entities.System{Name: opts.System, Boundary: opts.Boundary, Pseudized: opts.Pseudized}
	if err := system.Validate(); err != nil {
		return nil, err
	}

	tmpl := requestTemplate{
		Kind:     opts.Kind,
		BasePath: opts.BasePath,
		System:   system,
		Options: map[string]any{
			"scf":        true,
			"p2q":        true,
			"opt_inputs": map[string]any{"J2_prod": true},
			"vmc_inputs": map[string]any{"J0_prod": true, "J2_prod": true},
			"dmc_inputs": map[string]any{"J2_prod": true},
		},
	}
	if opts.Pseudized {
		tmpl.Options["dft_pseudos"] = []string{opts.System + ".upf"}
		tmpl.Options["qmc_pseudos"] = []string{opts.System + ".xml"}
	}

	switch opts.Kind {
	case dto.KindChain:
	case dto.KindEcutScan:
		tmpl.Sweep = map[string]any{
			"ecuts":        []float64{50, 75, 100},
			"ecut_jastrow": 100.0,
		}
	case dto.KindSystemScan:
		tmpl.Sweep = map[string]any{
			"systems": []map[string]any{
				{"dir": opts.System + "_a", "system": system},
				{"dir": opts.System + "_b", "system": system},
			},
		}
		tmpl.System = nil
	case dto.KindSystemParameterScan:
		tmpl.Sweep = map[string]any{
			"variable": "a",
			"values":   []float64{3.5, 3.6, 3.7},
			"generator": map[string]any{
				"name":       opts.System,
				"boundary":   fmt.Sprintf("%q", system.Boundary),
				"pseudized":  fmt.Sprintf("%t", system.Pseudized),
				"parameters": map[string]string{"volume": "a ** 3 / 4"},
			},
		}
		tmpl.System = nil
	default:
		return nil, fmt.Errorf("unknown request kind %q (valid: %v)", opts.Kind, dto.RequestKinds)
	}

	return yaml.Marshal(tmpl)
}
