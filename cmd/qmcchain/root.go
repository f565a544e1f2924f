package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apperrors "github.com/reglet-dev/qmcchain/internal/application/errors"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/system"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "QMCCHAIN"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "qmcchain",
	Short: "Assemble QMC workflow pipelines from layered defaults",
	Long: `qmcchain turns a short request file into the full dependency graph of a
quantum Monte Carlo workflow: ground state, orbital conversion, Jastrow
optimization, VMC and DMC stages, plus cutoff and system sweeps.

Every option not given in the request is resolved from versioned default
profiles, which can be extended with profile files.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command. Rejected input exits with 2, any other
// failure with 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsUserError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.qmcchain/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile == "" {
		cfgFile = system.DefaultPath()
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("output.format", "table")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := parseLevel(viper.GetString("logging.level"))
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
