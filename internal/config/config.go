// Package config implements hierarchical configuration for ladder.
// Precedence: defaults < user (~/.ladder/config.toml) < project
// (.ladder/config.toml) < env (LADDER_*) < flags.
package config

// Config is the top-level configuration structure.
type Config struct {
	General   GeneralConfig   `toml:"general" mapstructure:"general"`
	Discovery DiscoveryConfig `toml:"discovery" mapstructure:"discovery"`
	History   HistoryConfig   `toml:"history" mapstructure:"history"`
	Watch     WatchConfig     `toml:"watch" mapstructure:"watch"`
	Patterns  PatternsConfig  `toml:"patterns" mapstructure:"patterns"`
}

// GeneralConfig holds core behavior knobs.
type GeneralConfig struct {
	TestsRoot string `toml:"tests_root" mapstructure:"tests_root"`
	LogLevel  string `toml:"log_level" mapstructure:"log_level"`
	Color     string `toml:"color" mapstructure:"color"` // auto | always | never
}

// DiscoveryConfig controls candidate discovery.
type DiscoveryConfig struct {
	IncludeExtensions []string `toml:"include_extensions" mapstructure:"include_extensions"`
	FollowSymlinks    bool     `toml:"follow_symlinks" mapstructure:"follow_symlinks"`
}

// HistoryConfig holds run-history persistence settings.
type HistoryConfig struct {
	DatabasePath  string `toml:"database_path" mapstructure:"database_path"`
	RetentionDays int    `toml:"retention_days" mapstructure:"retention_days"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	DebounceMs int `toml:"debounce_ms" mapstructure:"debounce_ms"`
}

// PatternsConfig layers extra globs onto the built-in tier catalog. The
// built-in patterns are never removed; projects can only widen a tier.
type PatternsConfig struct {
	L1 []string `toml:"l1" mapstructure:"l1"`
	L2 []string `toml:"l2" mapstructure:"l2"`
	L3 []string `toml:"l3" mapstructure:"l3"`
	L4 []string `toml:"l4" mapstructure:"l4"`
	L5 []string `toml:"l5" mapstructure:"l5"`
}
