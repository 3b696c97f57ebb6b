package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 300, cfg.Limits.MaxCommits)
	assert.Equal(t, 30, cfg.Limits.MaxFilesPerCommit)
	assert.Equal(t, 10, cfg.Limits.TopPatterns)
	assert.Equal(t, 1, cfg.Limits.Workers)
	assert.Contains(t, cfg.Keywords, "fix")
	assert.Contains(t, cfg.Keywords, "cve")
	assert.Equal(t, []string{"tests/", "docs/"}, cfg.Exclude.Prefixes)
	assert.Equal(t, "text", cfg.Output.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patina.yaml")
	content := `limits:
  max_commits: 50
  max_files_per_commit: 5
keywords:
  - fix
  - hotfix
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Limits.MaxCommits)
	assert.Equal(t, 5, cfg.Limits.MaxFilesPerCommit)
	assert.Equal(t, []string{"fix", "hotfix"}, cfg.Keywords)
	assert.Equal(t, "json", cfg.Output.Format)
	// Untouched fields keep their defaults.
	assert.Equal(t, 10, cfg.Limits.TopPatterns)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patina.toml")
	content := `[limits]
max_commits = 25
workers = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Limits.MaxCommits)
	assert.Equal(t, 4, cfg.Limits.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestLoadOrDefaultEmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvMaxCommits, "42")
	t.Setenv(EnvMaxFilesPerCommit, "7")
	t.Setenv(EnvWorkers, "3")

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Limits.MaxCommits)
	assert.Equal(t, 7, cfg.Limits.MaxFilesPerCommit)
	assert.Equal(t, 3, cfg.Limits.Workers)
}

func TestFromEnvRejectsNonInteger(t *testing.T) {
	t.Setenv(EnvMaxCommits, "many")

	_, err := LoadOrDefault("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Contains(t, err.Error(), EnvMaxCommits)
}

func TestValidateRejectsBadCaps(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max_commits", func(c *Config) { c.Limits.MaxCommits = 0 }},
		{"negative max_files", func(c *Config) { c.Limits.MaxFilesPerCommit = -1 }},
		{"zero top_patterns", func(c *Config) { c.Limits.TopPatterns = 0 }},
		{"zero workers", func(c *Config) { c.Limits.Workers = 0 }},
		{"negative sample_size", func(c *Config) { c.Limits.SampleSize = -5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}
