// Package cli implements the ladder command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/config"
	"github.com/Dicklesworthstone/ladder/internal/output"
	"github.com/Dicklesworthstone/ladder/internal/utils"
)

var (
	flagJSON     bool
	flagConfig   string
	flagProject  string
	flagLogLevel string
	flagNoColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "ladder",
	Short: "Classify and route tests across the five-level testing ladder",
	Long: `ladder maps a model-serving project's test files onto its L1-L5 testing
ladder: component unit tests gate PR readiness (L1), core model e2e runs on
merge (L2), expansion and performance suites run nightly (L3/L4), and
stability/reliability runs weekly (L5).

ladder classifies test paths against the tier catalog, discovers whole
trees, and emits run plans (files, marker expressions, time budgets) for
the external test runner. It never executes tests itself.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		output.SetOutputMode(flagJSON)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := cfg.General.LogLevel
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		utils.SetLevel(level)

		color := cfg.General.Color
		if flagNoColor {
			color = "never"
		}
		output.SetColor(color)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON instead of human-readable output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (overrides .ladder/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// projectPath resolves the project directory from the flag or CWD.
func projectPath() (string, error) {
	if flagProject != "" {
		return flagProject, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}
	return cwd, nil
}

// loadConfig loads the effective configuration for the current invocation.
func loadConfig() (config.Config, error) {
	project, err := projectPath()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(config.LoadOptions{
		ProjectDir: project,
		ConfigPath: flagConfig,
	})
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
