// Package config loads wex settings from a TOML file and WEX_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/wex/internal/logging"
)

// DefaultFileName is the name of the configuration file inside the config dir.
const DefaultFileName = "wex.toml"

// Config holds every setting wex reads.
type Config struct {
	// ConfigDir is where macros.xml and template files live.
	ConfigDir string `toml:"config_dir"`

	// MacrosFile is the macro store file name, relative to ConfigDir
	// unless absolute.
	MacrosFile string `toml:"macros_file"`

	// WatchMacros reloads the macro store when the file changes on disk.
	WatchMacros bool `toml:"watch_macros"`

	Log    LogConfig    `toml:"log"`
	Stream StreamConfig `toml:"stream"`
	Find   FindConfig   `toml:"find"`
	Status StatusConfig `toml:"status"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// StreamConfig configures the ex-stream engine.
type StreamConfig struct {
	// LineBuffer is the initial capacity of the current-line buffer.
	LineBuffer int `toml:"line_buffer"`
	// BlockSize is the size of the block read when moving backward.
	BlockSize int `toml:"block_size"`
	// ContextLines caps the visible window.
	ContextLines int `toml:"context_lines"`
	// RewindDistance is how far back goto may scan before rewinding to
	// the start of the file instead.
	RewindDistance int `toml:"rewind_distance"`
	// RegexCache is the number of compiled patterns kept.
	RegexCache int `toml:"regex_cache"`
}

// FindConfig holds the find/replace settings.
type FindConfig struct {
	Regex     bool `toml:"regex"`
	MatchCase bool `toml:"match_case"`
}

// StatusConfig configures the status panes.
type StatusConfig struct {
	Width int `toml:"width"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ConfigDir:   defaultConfigDir(),
		MacrosFile:  "macros.xml",
		WatchMacros: true,
		Log:         LogConfig{Level: "info"},
		Stream: StreamConfig{
			LineBuffer:     500,
			BlockSize:      1000000,
			ContextLines:   50,
			RewindDistance: 1000,
			RegexCache:     64,
		},
		Find:   FindConfig{Regex: true, MatchCase: true},
		Status: StatusConfig{Width: 40},
	}
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".wex"
	}
	return filepath.Join(dir, "wex")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(defaultConfigDir(), DefaultFileName)
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := Decode(data, cfg); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// Decode unmarshals TOML data into cfg, keeping values the data does not set.
func Decode(data []byte, cfg *Config) error {
	return toml.Unmarshal(data, cfg)
}

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// MacrosPath returns the absolute macros file location.
func (c *Config) MacrosPath() string {
	if filepath.IsAbs(c.MacrosFile) {
		return c.MacrosFile
	}
	return filepath.Join(c.ConfigDir, c.MacrosFile)
}

// Validate checks value ranges and normalizes paths.
func (c *Config) Validate() error {
	if c.MacrosFile == "" {
		return fmt.Errorf("macros_file: %w", ErrInvalidValue)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, ErrInvalidValue)
	}
	if c.Stream.LineBuffer <= 0 {
		return fmt.Errorf("stream.line_buffer %d: %w", c.Stream.LineBuffer, ErrInvalidValue)
	}
	if c.Stream.BlockSize <= 0 {
		return fmt.Errorf("stream.block_size %d: %w", c.Stream.BlockSize, ErrInvalidValue)
	}
	if c.Stream.ContextLines <= 0 {
		return fmt.Errorf("stream.context_lines %d: %w", c.Stream.ContextLines, ErrInvalidValue)
	}
	if c.Stream.RewindDistance < 0 {
		return fmt.Errorf("stream.rewind_distance %d: %w", c.Stream.RewindDistance, ErrInvalidValue)
	}
	if c.Stream.RegexCache < 0 {
		return fmt.Errorf("stream.regex_cache %d: %w", c.Stream.RegexCache, ErrInvalidValue)
	}
	if c.Status.Width <= 0 {
		return fmt.Errorf("status.width %d: %w", c.Status.Width, ErrInvalidValue)
	}
	c.ConfigDir = expandHome(c.ConfigDir)
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
