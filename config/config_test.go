package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallsorter/imageprocessor"
	"wallsorter/matcher"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallsorter.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, imageprocessor.DefaultHashSize, cfg.HashSize)
	assert.Equal(t, 80, cfg.SimilarityPercentage)
	assert.Equal(t, 1920, cfg.Edits.MinWidth)
	assert.Equal(t, 1080, cfg.Edits.MinHeight)
	assert.Equal(t, 2.0, cfg.Edits.RatioTolerancePercent)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
hash_size = 16
dry_run = true

[edits]
min_width = 2560
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.HashSize)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 80, cfg.SimilarityPercentage)
	assert.Equal(t, 2560, cfg.Edits.MinWidth)
	assert.Equal(t, 1080, cfg.Edits.MinHeight)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "hash_size = \"big\""))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WALLSORTER_HASH_SIZE", "32")
	t.Setenv("WALLSORTER_SIMILARITY_PERCENTAGE", "90")
	t.Setenv("WALLSORTER_DRY_RUN", "true")
	t.Setenv("WALLSORTER_DATABASE", "/tmp/journal.db")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 32, cfg.HashSize)
	assert.Equal(t, 90, cfg.SimilarityPercentage)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "/tmp/journal.db", cfg.Database)
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("WALLSORTER_WORKERS", "many")

	err := Default().ApplyEnv()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "WALLSORTER_WORKERS", cfgErr.Field)
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WALLSORTER_TEST_DOTENV=yes\n"), 0o644))
	t.Setenv("WALLSORTER_TEST_DOTENV", "")
	os.Unsetenv("WALLSORTER_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "yes", os.Getenv("WALLSORTER_TEST_DOTENV"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
		reason error
	}{
		{"zero hash size", func(c *Config) { c.HashSize = 0 }, "hash_size", imageprocessor.ErrInvalidHashSize},
		{"zero percentage", func(c *Config) { c.SimilarityPercentage = 0 }, "similarity_percentage", matcher.ErrInvalidPercentage},
		{"percentage over 100", func(c *Config) { c.SimilarityPercentage = 101 }, "similarity_percentage", matcher.ErrInvalidPercentage},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers", nil},
		{"no min size", func(c *Config) { c.Edits.MinHeight = 0 }, "edits.min_width/min_height", nil},
		{"no ratio", func(c *Config) { c.Edits.RatioHeight = 0 }, "edits.ratio_width/ratio_height", nil},
		{"huge tolerance", func(c *Config) { c.Edits.RatioTolerancePercent = 100 }, "edits.ratio_tolerance_percent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			if tt.reason != nil {
				assert.ErrorIs(t, err, tt.reason)
			}
		})
	}
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := Default()
	cfg.Edits.MinWidth = 2560
	policy := cfg.Policy()
	assert.Equal(t, 2560, policy.MinWidth)
	assert.Equal(t, 9, policy.RatioHeight)
}
