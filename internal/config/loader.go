package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ProjectDir is used to locate .ladder/config.toml. Defaults to CWD when empty.
	ProjectDir string
	// ConfigPath overrides the project config path if provided.
	ConfigPath string
	// FlagOverrides are highest-priority overrides from CLI flags (dot-notated keys).
	FlagOverrides map[string]any
}

// Load returns the effective configuration after applying precedence:
// defaults < user (~/.ladder/config.toml) < project (.ladder/config.toml) < env (LADDER_*) < flags.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	projectDir := opts.ProjectDir
	if projectDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			projectDir = cwd
		}
	}

	// 1) User config
	if err := mergeConfigFile(v, userConfigPath()); err != nil {
		return Config{}, err
	}
	// 2) Project config
	if err := mergeConfigFile(v, projectConfigPath(projectDir, opts.ConfigPath)); err != nil {
		return Config{}, err
	}
	// 3) Environment variables
	if err := applyEnvOverrides(v); err != nil {
		return Config{}, err
	}
	// 4) CLI flags (highest)
	applyFlagOverrides(v, opts.FlagOverrides)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Catalog builds the tier catalog with the config's extra patterns layered
// onto the built-in table.
func (c Config) Catalog() *tier.Catalog {
	extra := map[tier.ID][]tier.Pattern{}
	add := func(id tier.ID, globs []string) {
		for _, g := range globs {
			extra[id] = append(extra[id], tier.Pattern{Glob: g, Kind: tier.KindFunctional})
		}
	}
	add(tier.L1, c.Patterns.L1)
	add(tier.L2, c.Patterns.L2)
	add(tier.L3, c.Patterns.L3)
	add(tier.L4, c.Patterns.L4)
	add(tier.L5, c.Patterns.L5)
	if len(extra) == 0 {
		return tier.Default()
	}
	return tier.NewWithExtra(extra)
}

// HistoryDBPath resolves the history database path for a project.
func (c Config) HistoryDBPath(projectDir string) string {
	if c.History.DatabasePath != "" {
		return c.History.DatabasePath
	}
	return filepath.Join(projectDir, ".ladder", "history.db")
}

// setDefaults seeds viper with built-in defaults.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("general.tests_root", def.General.TestsRoot)
	v.SetDefault("general.log_level", def.General.LogLevel)
	v.SetDefault("general.color", def.General.Color)

	v.SetDefault("discovery.include_extensions", def.Discovery.IncludeExtensions)
	v.SetDefault("discovery.follow_symlinks", def.Discovery.FollowSymlinks)

	v.SetDefault("history.database_path", def.History.DatabasePath)
	v.SetDefault("history.retention_days", def.History.RetentionDays)

	v.SetDefault("watch.debounce_ms", def.Watch.DebounceMs)

	v.SetDefault("patterns.l1", def.Patterns.L1)
	v.SetDefault("patterns.l2", def.Patterns.L2)
	v.SetDefault("patterns.l3", def.Patterns.L3)
	v.SetDefault("patterns.l4", def.Patterns.L4)
	v.SetDefault("patterns.l5", def.Patterns.L5)
}

// mergeConfigFile merges the TOML config file if it exists.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides reads LADDER_* env vars and applies them.
func applyEnvOverrides(v *viper.Viper) error {
	for _, binding := range envBindings {
		val := os.Getenv(binding.Env)
		if val == "" {
			continue
		}
		parsed, err := parseValueByKind(val, binding.Kind)
		if err != nil {
			return fmt.Errorf("env %s: %w", binding.Env, err)
		}
		v.Set(binding.Key, parsed)
	}
	return nil
}

// applyFlagOverrides applies CLI overrides as highest-precedence values.
func applyFlagOverrides(v *viper.Viper, overrides map[string]any) {
	for k, val := range overrides {
		v.Set(k, val)
	}
}

// ConfigPaths returns the user and project config file paths.
func ConfigPaths(projectDir, configOverride string) (string, string) {
	return userConfigPath(), projectConfigPath(projectDir, configOverride)
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ladder", "config.toml")
}

func projectConfigPath(projectDir, override string) string {
	if override != "" {
		return override
	}
	if projectDir == "" {
		return ".ladder/config.toml"
	}
	return filepath.Join(projectDir, ".ladder", "config.toml")
}

// ParseValue parses a raw string into the expected type for a given config key.
func ParseValue(key, raw string) (any, error) {
	kind, ok := keyKinds[key]
	if !ok {
		return nil, fmt.Errorf("unsupported key %q", key)
	}
	return parseValueByKind(raw, kind)
}

// GetValue retrieves a dot-notated value from the Config.
func GetValue(cfg Config, key string) (any, bool) {
	segments := strings.Split(key, ".")
	if len(segments) == 0 {
		return nil, false
	}
	var current any = cfg
	for _, seg := range segments {
		switch c := current.(type) {
		case Config:
			switch seg {
			case "general":
				current = c.General
			case "discovery":
				current = c.Discovery
			case "history":
				current = c.History
			case "watch":
				current = c.Watch
			case "patterns":
				current = c.Patterns
			default:
				return nil, false
			}
		case GeneralConfig:
			switch seg {
			case "tests_root":
				return c.TestsRoot, true
			case "log_level":
				return c.LogLevel, true
			case "color":
				return c.Color, true
			default:
				return nil, false
			}
		case DiscoveryConfig:
			switch seg {
			case "include_extensions":
				return c.IncludeExtensions, true
			case "follow_symlinks":
				return c.FollowSymlinks, true
			default:
				return nil, false
			}
		case HistoryConfig:
			switch seg {
			case "database_path":
				return c.DatabasePath, true
			case "retention_days":
				return c.RetentionDays, true
			default:
				return nil, false
			}
		case WatchConfig:
			switch seg {
			case "debounce_ms":
				return c.DebounceMs, true
			default:
				return nil, false
			}
		case PatternsConfig:
			switch seg {
			case "l1":
				return c.L1, true
			case "l2":
				return c.L2, true
			case "l3":
				return c.L3, true
			case "l4":
				return c.L4, true
			case "l5":
				return c.L5, true
			default:
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return current, true
}

// WriteValue sets a single key/value into the specified TOML config file (creating it if needed).
func WriteValue(path, key string, value any) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	var existing map[string]any
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &existing); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
		if existing == nil {
			existing = map[string]any{}
		}
	} else {
		existing = map[string]any{}
	}

	if err := setNested(existing, key, value); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create config %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(existing); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func setNested(m map[string]any, key string, value any) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return fmt.Errorf("invalid key %q", key)
	}
	cur := m
	for i, p := range parts {
		if i == len(parts)-1 {
			cur[p] = value
			return nil
		}
		next, ok := cur[p]
		if !ok {
			child := map[string]any{}
			cur[p] = child
			cur = child
			continue
		}
		childMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot set %s: %s is not a table", key, strings.Join(parts[:i+1], "."))
		}
		cur = childMap
	}
	return nil
}

// Helpers for env + parsing ---------------------------------------------------

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindInt
	kindStringSlice
)

var keyKinds = map[string]valueKind{
	"general.tests_root": kindString,
	"general.log_level":  kindString,
	"general.color":      kindString,

	"discovery.include_extensions": kindStringSlice,
	"discovery.follow_symlinks":    kindBool,

	"history.database_path":  kindString,
	"history.retention_days": kindInt,

	"watch.debounce_ms": kindInt,

	"patterns.l1": kindStringSlice,
	"patterns.l2": kindStringSlice,
	"patterns.l3": kindStringSlice,
	"patterns.l4": kindStringSlice,
	"patterns.l5": kindStringSlice,
}

var envBindings = []struct {
	Env  string
	Key  string
	Kind valueKind
}{
	{"LADDER_TESTS_ROOT", "general.tests_root", kindString},
	{"LADDER_LOG_LEVEL", "general.log_level", kindString},
	{"LADDER_COLOR", "general.color", kindString},

	{"LADDER_INCLUDE_EXTENSIONS", "discovery.include_extensions", kindStringSlice},
	{"LADDER_FOLLOW_SYMLINKS", "discovery.follow_symlinks", kindBool},

	{"LADDER_HISTORY_DB_PATH", "history.database_path", kindString},
	{"LADDER_HISTORY_RETENTION_DAYS", "history.retention_days", kindInt},

	{"LADDER_WATCH_DEBOUNCE_MS", "watch.debounce_ms", kindInt},

	{"LADDER_PATTERNS_L1", "patterns.l1", kindStringSlice},
	{"LADDER_PATTERNS_L2", "patterns.l2", kindStringSlice},
	{"LADDER_PATTERNS_L3", "patterns.l3", kindStringSlice},
	{"LADDER_PATTERNS_L4", "patterns.l4", kindStringSlice},
	{"LADDER_PATTERNS_L5", "patterns.l5", kindStringSlice},
}

func parseValueByKind(raw string, kind valueKind) (any, error) {
	switch kind {
	case kindString:
		return raw, nil
	case kindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected boolean: %w", err)
		}
		return v, nil
	case kindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected integer: %w", err)
		}
		return v, nil
	case kindStringSlice:
		parts := strings.Split(raw, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported value kind")
	}
}
