// Copyright (c) 2025 A Bit of Help, Inc.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abitofhelp/pixelpack/pkg/archive"
	"github.com/abitofhelp/pixelpack/pkg/compression"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/abitofhelp/pixelpack/pkg/pipeline/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pixelpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.TargetPercent)
	assert.Equal(t, DefaultPreset, cfg.Preset)
	assert.Equal(t, "deflate", cfg.Algorithm)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, archive.DefaultName, cfg.ArchiveName)
	assert.Equal(t, int64(options.DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Sealing())
}

func TestLoad_Presets(t *testing.T) {
	tests := map[string]int{"max-quality": 10, "balanced": 30, "max-reduction": 70}
	for preset, want := range tests {
		cfg, err := Load("", map[string]any{"preset": preset})
		require.NoError(t, err, preset)
		assert.Equal(t, want, cfg.TargetPercent, preset)
	}
}

func TestLoad_ExplicitPercentBeatsPreset(t *testing.T) {
	cfg, err := Load("", map[string]any{"preset": "max-reduction", "target_percent": 45})
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.TargetPercent)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
target_percent: 60
algorithm: brotli
archive_name: bundle.zip
raw_entropy: true
timeout: 45s
seal:
  keyset_path: /tmp/keys.json
log:
  level: debug
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.TargetPercent)
	assert.Equal(t, "brotli", cfg.Algorithm)
	assert.Equal(t, "bundle.zip", cfg.ArchiveName)
	assert.True(t, cfg.RawEntropy)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/keys.json", cfg.Seal.KeysetPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Sealing())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "target_percent: 20\nalgorithm: zstd\nlog:\n  level: warn\n")
	t.Setenv("PIXELPACK_TARGET_PERCENT", "40")
	t.Setenv("PIXELPACK_LOG_LEVEL", "error")
	t.Setenv("PIXELPACK_SEAL_KEYSET_PATH", "/env/keys.json")

	cfg, err := Load(path, map[string]any{"target_percent": 80})
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.TargetPercent)
	assert.Equal(t, "zstd", cfg.Algorithm)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/env/keys.json", cfg.Seal.KeysetPath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"percent too low", map[string]any{"target_percent": 5}},
		{"percent too high", map[string]any{"target_percent": 95}},
		{"unknown preset", map[string]any{"preset": "extreme"}},
		{"archive path", map[string]any{"archive_name": "../escape.zip"}},
		{"log level", map[string]any{"log.level": "loud"}},
		{"negative timeout", map[string]any{"timeout": -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", tt.overrides)
			require.Error(t, err)
			assert.True(t, customErrors.IsInvalidConfiguration(err))
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{TargetPercent: 200, Preset: "nope", ArchiveName: "a/b.zip", Log: LogConfig{Level: "loud"}}
	err := cfg.Validate()
	require.Error(t, err)

	var collector *customErrors.ErrorCollector
	require.ErrorAs(t, err, &collector)
	assert.Len(t, collector.Errors(), 4)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.True(t, customErrors.IsIOError(err))
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "target_percent: [unclosed"), nil)
	require.Error(t, err)
	assert.True(t, customErrors.IsInvalidConfiguration(err))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "target_percent", envKey("PIXELPACK_TARGET_PERCENT"))
	assert.Equal(t, "seal.keyset_path", envKey("PIXELPACK_SEAL_KEYSET_PATH"))
	assert.Equal(t, "log.level", envKey("PIXELPACK_LOG_LEVEL"))
	assert.Equal(t, "metrics_file", envKey("PIXELPACK_METRICS_FILE"))
}

func TestSettings(t *testing.T) {
	cfg := &Config{TargetPercent: 55, Algorithm: "pdf"}
	s := cfg.Settings()
	assert.Equal(t, normalize.Percent(55), s.TargetPercent)
	assert.Equal(t, compression.Deflate, s.Algorithm)
}
