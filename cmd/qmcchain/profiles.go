package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
)

var profileFiles []string

// profilesCmd groups the profile inspection commands.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect default profiles",
	Long: `Default profiles supply every option a request leaves out. The built-in
profiles can be extended with profile files listed in the config file, in
QMCCHAIN_PROFILES or with --profiles.`,
}

func init() {
	profilesCmd.PersistentFlags().StringSliceVarP(&profileFiles, "profiles", "p", nil,
		"Profile files to merge over the built-in defaults (repeatable)")
	profilesCmd.AddCommand(newProfilesListCmd(), newProfilesShowCmd())
	rootCmd.AddCommand(profilesCmd)
}

func profilePaths(ctx *CommandContext) []string {
	var paths []string
	paths = append(paths, ctx.Container.SystemConfig().Profiles...)
	if env, ok := os.LookupEnv(EnvPrefix + "_PROFILES"); ok && env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}
	return append(paths, profileFiles...)
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List profiles by kind",
		Example: `  qmcchain profiles list -p lab.yaml`,
		Args:    cobra.NoArgs,
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
			summaries, err := ctx.Container.ProfilesUseCase().List(profilePaths(ctx))
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}
			return writeProfileTable(cmd, summaries)
		}),
	}
}

func writeProfileTable(cmd *cobra.Command, summaries []dto.ProfileSummary) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(w, "KIND\tPROFILES\tLATEST\tOVERLAYS"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range summaries {
		methods := make([]string, 0, len(s.Overlays))
		for m, names := range s.Overlays {
			methods = append(methods, m+"("+strings.Join(names, ",")+")")
		}
		sort.Strings(methods)

		latest := s.Latest
		if latest == "" {
			latest = "-"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			s.Kind,
			strings.Join(s.Names, ", "),
			latest,
			strings.Join(methods, " "),
		); err != nil {
			return fmt.Errorf("failed to write profile info: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

func newProfilesShowCmd() *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "show <kind> [name]",
		Short: "Print the values of one profile",
		Long: `Print one profile as YAML. The name defaults to the latest version of
the kind. With --method the method overlay of the profile is printed instead.`,
		Example: `  qmcchain profiles show jastrow
  qmcchain profiles show opt_sections mm --method linear`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			detail, err := ctx.Container.ProfilesUseCase().Show(profilePaths(ctx), args[0], name, method)
			if err != nil {
				return err
			}
			encoder := yaml.NewEncoder(cmd.OutOrStdout(), yaml.Indent(2))
			if err := encoder.Encode(detail); err != nil {
				return err
			}
			return encoder.Close()
		}),
	}
	cmd.Flags().StringVar(&method, "method", "", "Show the overlay for this method")
	return cmd
}
