package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "WEX_"

// envBinding maps one environment variable onto a config field.
type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

func envBindings() []envBinding {
	return []envBinding{
		{"WEX_CONFIG_DIR", func(c *Config, v string) error { c.ConfigDir = v; return nil }},
		{"WEX_MACROS_FILE", func(c *Config, v string) error { c.MacrosFile = v; return nil }},
		{"WEX_WATCH_MACROS", boolField(func(c *Config) *bool { return &c.WatchMacros })},
		{"WEX_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
		{"WEX_STREAM_LINE_BUFFER", intField(func(c *Config) *int { return &c.Stream.LineBuffer })},
		{"WEX_STREAM_BLOCK_SIZE", intField(func(c *Config) *int { return &c.Stream.BlockSize })},
		{"WEX_STREAM_CONTEXT_LINES", intField(func(c *Config) *int { return &c.Stream.ContextLines })},
		{"WEX_STREAM_REWIND_DISTANCE", intField(func(c *Config) *int { return &c.Stream.RewindDistance })},
		{"WEX_STREAM_REGEX_CACHE", intField(func(c *Config) *int { return &c.Stream.RegexCache })},
		{"WEX_FIND_REGEX", boolField(func(c *Config) *bool { return &c.Find.Regex })},
		{"WEX_FIND_MATCH_CASE", boolField(func(c *Config) *bool { return &c.Find.MatchCase })},
		{"WEX_STATUS_WIDTH", intField(func(c *Config) *int { return &c.Status.Width })},
	}
}

func intField(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolField(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// ApplyEnv overrides cfg with any WEX_* variables that are set.
// Empty values count as set.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings() {
		v, ok := lookup(b.name)
		if !ok {
			continue
		}
		if err := b.apply(cfg, v); err != nil {
			return fmt.Errorf("%s=%q: %w", b.name, v, ErrInvalidValue)
		}
	}
	return nil
}
