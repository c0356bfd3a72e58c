package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bethropolis/ccrawler/internal/logger"
	"github.com/bethropolis/ccrawler/internal/output"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration settings
type Config struct {
	// Positional inputs. When a *Set flag is false the value is prompted for.
	Directory    string `yaml:"-"`
	DirectorySet bool   `yaml:"-"`
	Query        string `yaml:"-"`
	QuerySet     bool   `yaml:"-"`

	// Output settings
	OutputFile  string        `yaml:"output"`
	Quiet       bool          `yaml:"quiet"`
	ShowSkipped bool          `yaml:"show_skipped"`
	Timeout     time.Duration `yaml:"-"`

	// Logging settings
	LogLevel  string `yaml:"log_level"`
	Verbose   bool   `yaml:"-"`
	NoColor   bool   `yaml:"no_color"`
	UseColors bool   `yaml:"-"` // console (stdout)
	LogColors bool   `yaml:"-"` // log lines (stderr)

	// Traversal settings
	Exclude        []string `yaml:"exclude"`
	Gitignore      bool     `yaml:"gitignore"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`

	// Version info
	Version string `yaml:"-"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		OutputFile: output.DefaultFile,
		Version:    "dev",
	}
}

// LoadConfig loads configuration from the specified YAML file.
// An empty path or a missing file yields the defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Timeout is a duration string in the file.
	type yamlConfig struct {
		Config  `yaml:",inline"`
		Timeout string `yaml:"timeout"`
	}
	fileCfg := yamlConfig{Config: *cfg}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	*cfg = fileCfg.Config

	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", fileCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = output.DefaultFile
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail mid-run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputFile) == "" {
		return errors.New("output file must not be empty")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", c.Timeout)
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// EffectiveLevel resolves the log level from LogLevel, Verbose and Quiet.
// An explicit LogLevel wins; otherwise Verbose means debug and Quiet means warn.
func (c *Config) EffectiveLevel() logger.LogLevel {
	if c.LogLevel != "" {
		level, err := logger.ParseLevel(c.LogLevel)
		if err == nil {
			return level
		}
	}
	switch {
	case c.Verbose:
		return logger.LevelDebug
	case c.Quiet:
		return logger.LevelWarn
	default:
		return logger.LevelInfo
	}
}

// ColorsAllowed reports whether colors may be used at all, before looking at
// the streams. --no-color and a non-empty NO_COLOR disable them.
func (c *Config) ColorsAllowed() bool {
	return !c.NoColor && os.Getenv("NO_COLOR") == ""
}
