// Copyright (c) 2025 A Bit of Help, Inc.

// Package config loads the run configuration.
//
// Precedence (highest to lowest):
//  1. Explicit overrides (command-line flags that were set)
//  2. Environment variables prefixed with PIXELPACK_
//  3. The optional YAML config file
//  4. Defaults
//
// Environment variables map onto keys by stripping the prefix and lowercasing; the
// seal and log sections are addressed with their section name first:
//
//	PIXELPACK_TARGET_PERCENT   -> target_percent
//	PIXELPACK_SEAL_KEYSET_PATH -> seal.keyset_path
//	PIXELPACK_LOG_LEVEL        -> log.level
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abitofhelp/pixelpack/pkg/archive"
	"github.com/abitofhelp/pixelpack/pkg/compression"
	"github.com/abitofhelp/pixelpack/pkg/dispatch"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/logger"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/abitofhelp/pixelpack/pkg/pipeline/options"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable read by Load
	EnvPrefix = "PIXELPACK_"

	// DefaultOutputDir receives deliverables when no explicit output path is given
	DefaultOutputDir = "pixelpack-out"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Presets name common target percents
var Presets = map[string]normalize.Percent{
	"max-quality":   10,
	"balanced":      30,
	"max-reduction": 70,
}

// DefaultPreset applies when neither target_percent nor preset is set
const DefaultPreset = "balanced"

// Config is the complete run configuration
type Config struct {
	// TargetPercent is the desired reduction in [10,90]; zero selects the preset
	TargetPercent int `koanf:"target_percent"`

	// Preset names a target percent; see Presets
	Preset string `koanf:"preset"`

	// Algorithm selects the text codec; unknown values fall back to deflate
	Algorithm string `koanf:"algorithm"`

	// Output is the deliverable path; when empty the deliverable goes to OutputDir
	Output string `koanf:"output"`

	// OutputDir receives the deliverable under its own name
	OutputDir string `koanf:"output_dir"`

	// ArchiveName names the multi-file deliverable
	ArchiveName string `koanf:"archive_name"`

	// RawEntropy makes the huffman codec emit bare packed bits without a frame
	RawEntropy bool `koanf:"raw_entropy"`

	// MaxFileSize bounds each input file in bytes
	MaxFileSize int64 `koanf:"max_file_size"`

	// Timeout bounds the whole run; zero means no limit
	Timeout time.Duration `koanf:"timeout"`

	// MetricsFile receives the Prometheus text exposition after the run
	MetricsFile string `koanf:"metrics_file"`

	Seal SealConfig `koanf:"seal"`
	Log  LogConfig  `koanf:"log"`
}

// SealConfig configures optional sealing of the deliverable
type SealConfig struct {
	// KeysetPath is the cleartext JSON keyset; sealing is off when empty
	KeysetPath string `koanf:"keyset_path"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `koanf:"level"`
}

// Load builds a Config from the YAML file at path (skipped when path is empty), the
// environment, and overrides keyed by config key (e.g. "seal.keyset_path").
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config file %s: %v", customErrors.ErrInvalidConfiguration, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %v", customErrors.ErrInvalidConfiguration, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps PIXELPACK_SEAL_KEYSET_PATH to seal.keyset_path
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"seal", "log"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open config file: %v", customErrors.ErrIOFailure, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat config file: %v", customErrors.ErrIOFailure, err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("%w: config file %s exceeds %d bytes",
			customErrors.ErrInvalidConfiguration, path, maxConfigFileSize)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", customErrors.ErrIOFailure, err)
	}
	return data, nil
}

func (c *Config) applyDefaults() {
	if c.Preset == "" {
		c.Preset = DefaultPreset
	}
	if c.TargetPercent == 0 {
		if p, ok := Presets[c.Preset]; ok {
			c.TargetPercent = int(p)
		}
	}
	if c.Algorithm == "" {
		c.Algorithm = string(compression.DefaultAlgorithm)
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.ArchiveName == "" {
		c.ArchiveName = archive.DefaultName
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = options.DefaultMaxFileSize
	}
	if c.Log.Level == "" {
		c.Log.Level = logger.DefaultLevel
	}
}

// Validate reports every invalid value at once. The result matches
// errors.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	collector := customErrors.NewErrorCollector()

	if _, ok := Presets[c.Preset]; !ok {
		collector.Add(fmt.Errorf("unknown preset %q", c.Preset))
	}
	collector.Add(normalize.Percent(c.TargetPercent).Validate())

	if c.ArchiveName == "" || c.ArchiveName != filepath.Base(c.ArchiveName) {
		collector.Add(fmt.Errorf("archive_name %q must be a plain file name", c.ArchiveName))
	}
	if c.MaxFileSize < 0 {
		collector.Add(fmt.Errorf("max_file_size must not be negative"))
	}
	if c.Timeout < 0 {
		collector.Add(fmt.Errorf("timeout must not be negative"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		collector.Add(err)
	}

	if collector.HasErrors() {
		return fmt.Errorf("%w: %w", customErrors.ErrInvalidConfiguration, collector)
	}
	return nil
}

// Settings returns the normalized request shared by every file of a run
func (c *Config) Settings() dispatch.Settings {
	return dispatch.Settings{
		TargetPercent: normalize.Percent(c.TargetPercent),
		Algorithm:     compression.ParseAlgorithm(c.Algorithm),
	}
}

// Sealing reports whether the deliverable will be sealed
func (c *Config) Sealing() bool {
	return c.Seal.KeysetPath != ""
}
