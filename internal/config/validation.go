package config

import (
	"fmt"
	"path"
	"strings"
)

// Validate checks the configuration for semantic errors.
func Validate(cfg Config) error {
	var errs []string

	if cfg.General.TestsRoot == "" {
		errs = append(errs, "general.tests_root must not be empty")
	}
	if !oneOf(cfg.General.LogLevel, "debug", "info", "warn", "error", "fatal") {
		errs = append(errs, "general.log_level must be one of debug|info|warn|error|fatal")
	}
	if !oneOf(cfg.General.Color, "auto", "always", "never") {
		errs = append(errs, "general.color must be one of auto|always|never")
	}

	for _, ext := range cfg.Discovery.IncludeExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("discovery.include_extensions entry %q must start with a dot", ext))
		}
	}

	if cfg.History.RetentionDays < 0 {
		errs = append(errs, "history.retention_days cannot be negative")
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, "watch.debounce_ms cannot be negative")
	}

	validateGlobs := func(name string, globs []string) {
		for _, g := range globs {
			if g == "" {
				errs = append(errs, fmt.Sprintf("patterns.%s contains an empty glob", name))
				continue
			}
			// path.Match reports malformed patterns regardless of the name.
			if _, err := path.Match(g, "probe"); err != nil {
				errs = append(errs, fmt.Sprintf("patterns.%s glob %q is malformed", name, g))
			}
		}
	}
	validateGlobs("l1", cfg.Patterns.L1)
	validateGlobs("l2", cfg.Patterns.L2)
	validateGlobs("l3", cfg.Patterns.L3)
	validateGlobs("l4", cfg.Patterns.L4)
	validateGlobs("l5", cfg.Patterns.L5)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func oneOf(val string, options ...string) bool {
	for _, opt := range options {
		if val == opt {
			return true
		}
	}
	return false
}
