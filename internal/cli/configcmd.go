package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/config"
	"github.com/Dicklesworthstone/ladder/internal/output"
)

var flagConfigSetUser bool

func init() {
	configSetCmd.Flags().BoolVar(&flagConfigSetUser, "user", false, "write to the user config (~/.ladder/config.toml) instead of the project config")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit ladder configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one effective config value (dot notation)",
	Long: `Print the effective value of a config key after applying the full
precedence chain (defaults < user < project < env < flags).

Examples:
  ladder config get general.tests_root
  ladder config get patterns.l3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		val, ok := config.GetValue(cfg, args[0])
		if !ok {
			return fmt.Errorf("unknown config key %q", args[0])
		}
		if output.IsJSON() {
			return output.OutputJSON(map[string]any{"key": args[0], "value": val})
		}
		fmt.Println(val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one config value to the project (or user) config file",
	Long: `Write a config value. Slice values are comma-separated.

Examples:
  ladder config set general.log_level debug
  ladder config set patterns.l2 'tests/e2e/audio/test_*.py'
  ladder config set --user history.retention_days 30`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]

		val, err := config.ParseValue(key, raw)
		if err != nil {
			return err
		}

		project, err := projectPath()
		if err != nil {
			return err
		}
		userPath, projPath := config.ConfigPaths(project, flagConfig)
		target := projPath
		if flagConfigSetUser {
			target = userPath
		}

		if err := config.WriteValue(target, key, val); err != nil {
			return err
		}

		// Reload so a bad write (e.g. invalid log level) fails loudly now.
		if _, err := loadConfig(); err != nil {
			return fmt.Errorf("value written but config is now invalid: %w", err)
		}

		if output.IsJSON() {
			return output.OutputJSON(map[string]any{"key": key, "value": val, "path": target})
		}
		fmt.Printf("Set %s = %v in %s\n", key, val, target)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user and project config file paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectPath()
		if err != nil {
			return err
		}
		userPath, projPath := config.ConfigPaths(project, flagConfig)

		if output.IsJSON() {
			return output.OutputJSON(map[string]string{
				"user":    userPath,
				"project": projPath,
			})
		}
		fmt.Printf("user:    %s\n", userPath)
		fmt.Printf("project: %s\n", projPath)
		return nil
	},
}
