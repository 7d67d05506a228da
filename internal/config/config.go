package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2wechat/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrFieldRange      = errors.New("field out of range")
)

// appDir is the directory name under the user config directory.
const appDir = "go-md2wechat"

// Field limits.
const (
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxGlobLength      = 256
	MaxTagLength       = 32
	MaxKnownTags       = 256
	MaxTimingMs        = 60_000 // settle timings
	MaxTimeoutMs       = 600_000
	MaxShortLabelRunes = 64
)

// Config holds the CLI configuration.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	Clean  CleanConfig  `yaml:"clean"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
	Glob       string `yaml:"glob"`       // doublestar pattern filtering directory inputs (empty = all .md)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
	Raw        bool   `yaml:"raw"`        // Write HTML before structural cleaning
}

// RenderConfig defines render pipeline options. Durations are milliseconds;
// zero keeps the library default.
type RenderConfig struct {
	TimeoutMs          int      `yaml:"timeoutMs"`          // per-file conversion bound
	SettleIntervalMs   int      `yaml:"settleIntervalMs"`   // embed poll interval
	SettleMinObserveMs int      `yaml:"settleMinObserveMs"` // observation window for local images
	SettleTimeoutMs    int      `yaml:"settleTimeoutMs"`    // embed wait bound
	LegacyFallback     bool     `yaml:"legacyFallback"`
	VaultDir           string   `yaml:"vaultDir"` // empty = directory of each source file
	KnownTags          []string `yaml:"knownTags"`
}

// CleanConfig defines structural cleaner options.
type CleanConfig struct {
	// ShortLabelMaxRunes is the short-label bundling threshold.
	// 0 keeps the default, a negative value disables bundling.
	ShortLabelMaxRunes int `yaml:"shortLabelMaxRunes"`
}

// Timeout returns the per-file timeout, 0 when unset.
func (r RenderConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// SettleTimings returns interval, minimum observation and timeout.
func (r RenderConfig) SettleTimings() (interval, minObserve, timeout time.Duration) {
	return time.Duration(r.SettleIntervalMs) * time.Millisecond,
		time.Duration(r.SettleMinObserveMs) * time.Millisecond,
		time.Duration(r.SettleTimeoutMs) * time.Millisecond
}

// HasSettleTimings reports whether any settle timing is set.
func (r RenderConfig) HasSettleTimings() bool {
	return r.SettleIntervalMs != 0 || r.SettleMinObserveMs != 0 || r.SettleTimeoutMs != 0
}

// Validate checks field lengths and numeric ranges.
// Called by LoadConfig, available for callers building a Config by hand.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("input.glob", c.Input.Glob, MaxGlobLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.vaultDir", c.Render.VaultDir, MaxPathLength); err != nil {
		return err
	}

	if len(c.Render.KnownTags) > MaxKnownTags {
		return fmt.Errorf("%w: render.knownTags (%d entries, max %d)", ErrFieldTooLong, len(c.Render.KnownTags), MaxKnownTags)
	}
	for i, tag := range c.Render.KnownTags {
		field := fmt.Sprintf("render.knownTags[%d]", i)
		if err := validateFieldLength(field, tag, MaxTagLength); err != nil {
			return err
		}
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%s: tag name cannot be empty", field)
		}
	}

	if err := validateRange("render.timeoutMs", c.Render.TimeoutMs, 0, MaxTimeoutMs); err != nil {
		return err
	}
	if err := validateRange("render.settleIntervalMs", c.Render.SettleIntervalMs, 0, MaxTimingMs); err != nil {
		return err
	}
	if err := validateRange("render.settleMinObserveMs", c.Render.SettleMinObserveMs, 0, MaxTimingMs); err != nil {
		return err
	}
	if err := validateRange("render.settleTimeoutMs", c.Render.SettleTimeoutMs, 0, MaxTimingMs); err != nil {
		return err
	}

	if c.Clean.ShortLabelMaxRunes > MaxShortLabelRunes {
		return fmt.Errorf("%w: clean.shortLabelMaxRunes must be at most %d, got %d",
			ErrFieldRange, MaxShortLabelRunes, c.Clean.ShortLabelMaxRunes)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateRange checks lo <= value <= hi.
func validateRange(fieldName string, value, lo, hi int) error {
	if value < lo || value > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrFieldRange, fieldName, lo, hi, value)
	}
	return nil
}

// DefaultConfig returns a configuration that keeps every library default.
func DefaultConfig() *Config {
	return &Config{}
}

// Marshal renders the configuration as YAML, in the layout LoadConfig reads.
func (c *Config) Marshal() ([]byte, error) {
	return yamlutil.Encode(c)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-md2wechat/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
