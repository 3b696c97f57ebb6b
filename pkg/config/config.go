// Package config holds run configuration: work-volume caps, the fix
// keyword heuristic, and output settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrConfig marks fatal configuration errors. They are surfaced before
// any analysis starts; the run does not begin.
var ErrConfig = errors.New("invalid configuration")

// Environment variables honored as overrides.
const (
	EnvMaxCommits        = "MAX_COMMITS"
	EnvMaxFilesPerCommit = "MAX_FILES_PER_COMMIT"
	EnvWorkers           = "PATINA_WORKERS"
)

// Config holds all configuration options for patina.
type Config struct {
	Limits   LimitsConfig  `koanf:"limits"`
	Keywords []string      `koanf:"keywords"`
	Exclude  ExcludeConfig `koanf:"exclude"`
	Output   OutputConfig  `koanf:"output"`
}

// LimitsConfig bounds the work volume of a run. The caps are the sole
// admission-control mechanism and are enforced before expensive work
// begins.
type LimitsConfig struct {
	MaxCommits        int `koanf:"max_commits"`
	MaxFilesPerCommit int `koanf:"max_files_per_commit"`
	TopPatterns       int `koanf:"top_patterns"`
	Workers           int `koanf:"workers"`
	SampleSize        int `koanf:"sample_size"`
}

// ExcludeConfig lists directory prefixes whose files are not analyzed.
type ExcludeConfig struct {
	Prefixes []string `koanf:"prefixes"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxCommits:        300,
			MaxFilesPerCommit: 30,
			TopPatterns:       10,
			Workers:           1,
			SampleSize:        0,
		},
		Keywords: []string{"fix", "bug", "security", "vuln", "cve", "patch", "error"},
		Exclude: ExcludeConfig{
			Prefixes: []string{"tests/", "docs/"},
		},
		Output: OutputConfig{
			Format:  "text",
			Verbose: false,
		},
	}
}

// Load loads configuration from a file, with the parser picked by
// extension, then applies environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if err := cfg.FromEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadOrDefault loads the given config file, or returns defaults plus
// environment overrides when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg := DefaultConfig()
	if err := cfg.FromEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// FromEnv applies environment variable overrides to the caps.
func (c *Config) FromEnv() error {
	overrides := []struct {
		name   string
		target *int
	}{
		{EnvMaxCommits, &c.Limits.MaxCommits},
		{EnvMaxFilesPerCommit, &c.Limits.MaxFilesPerCommit},
		{EnvWorkers, &c.Limits.Workers},
	}
	for _, o := range overrides {
		raw := os.Getenv(o.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrConfig, o.name, raw)
		}
		*o.target = n
	}
	return nil
}

// Validate rejects cap values that would make the run meaningless.
func (c *Config) Validate() error {
	if c.Limits.MaxCommits <= 0 {
		return fmt.Errorf("%w: max_commits must be positive, got %d", ErrConfig, c.Limits.MaxCommits)
	}
	if c.Limits.MaxFilesPerCommit <= 0 {
		return fmt.Errorf("%w: max_files_per_commit must be positive, got %d", ErrConfig, c.Limits.MaxFilesPerCommit)
	}
	if c.Limits.TopPatterns <= 0 {
		return fmt.Errorf("%w: top_patterns must be positive, got %d", ErrConfig, c.Limits.TopPatterns)
	}
	if c.Limits.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrConfig, c.Limits.Workers)
	}
	if c.Limits.SampleSize < 0 {
		return fmt.Errorf("%w: sample_size must not be negative, got %d", ErrConfig, c.Limits.SampleSize)
	}
	return nil
}
