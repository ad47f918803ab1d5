package config

// DefaultConfig returns the built-in default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			TestsRoot: "tests",
			LogLevel:  "info",
			Color:     "auto",
		},
		Discovery: DiscoveryConfig{
			// Test files plus the JSON perf/stability stage configs.
			IncludeExtensions: []string{".py", ".json"},
			FollowSymlinks:    false,
		},
		History: HistoryConfig{
			DatabasePath:  "",
			RetentionDays: 90,
		},
		Watch: WatchConfig{
			DebounceMs: 250,
		},
		Patterns: PatternsConfig{},
	}
}
