package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"wallsorter/classifier"
	"wallsorter/imageprocessor"
	"wallsorter/matcher"
)

// EnvPrefix prefixes every environment variable the tool reads
const EnvPrefix = "WALLSORTER_"

// CLIHashSize is the hash size used by the command line tool
const CLIHashSize = 64

type EditsConfig struct {
	MinWidth              int     `toml:"min_width"`
	MinHeight             int     `toml:"min_height"`
	RatioWidth            int     `toml:"ratio_width"`
	RatioHeight           int     `toml:"ratio_height"`
	RatioTolerancePercent float64 `toml:"ratio_tolerance_percent"`
}

type Config struct {
	Dir                  string      `toml:"dir"`
	HashSize             int         `toml:"hash_size"`
	SimilarityPercentage int         `toml:"similarity_percentage"`
	Workers              int         `toml:"workers"`
	Database             string      `toml:"database"`
	LogFile              string      `toml:"log_file"`
	Debug                bool        `toml:"debug"`
	DryRun               bool        `toml:"dry_run"`
	AutoOrient           bool        `toml:"auto_orient"`
	Edits                EditsConfig `toml:"edits"`
}

// ConfigurationError reports an unusable setting
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Reason
}

// Default returns the configuration used when nothing else is given
func Default() *Config {
	policy := classifier.DefaultPolicy()
	return &Config{
		HashSize:             imageprocessor.DefaultHashSize,
		SimilarityPercentage: 80,
		Edits: EditsConfig{
			MinWidth:              policy.MinWidth,
			MinHeight:             policy.MinHeight,
			RatioWidth:            policy.RatioWidth,
			RatioHeight:           policy.RatioHeight,
			RatioTolerancePercent: policy.RatioTolerancePercent,
		},
	}
}

// Load reads a TOML file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overrides the settings present in the TOML file at path
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment when one exists
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from WALLSORTER_* environment variables
func (c *Config) ApplyEnv() error {
	if err := envString("DIR", &c.Dir); err != nil {
		return err
	}
	if err := envInt("HASH_SIZE", &c.HashSize); err != nil {
		return err
	}
	if err := envInt("SIMILARITY_PERCENTAGE", &c.SimilarityPercentage); err != nil {
		return err
	}
	if err := envInt("WORKERS", &c.Workers); err != nil {
		return err
	}
	if err := envString("DATABASE", &c.Database); err != nil {
		return err
	}
	if err := envString("LOG_FILE", &c.LogFile); err != nil {
		return err
	}
	if err := envBool("DEBUG", &c.Debug); err != nil {
		return err
	}
	if err := envBool("DRY_RUN", &c.DryRun); err != nil {
		return err
	}
	return envBool("AUTO_ORIENT", &c.AutoOrient)
}

func envString(name string, dst *string) error {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
	return nil
}

func envInt(name string, dst *int) error {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return &ConfigurationError{Field: EnvPrefix + name, Value: v, Reason: err}
	}
	*dst = n
	return nil
}

func envBool(name string, dst *bool) error {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return &ConfigurationError{Field: EnvPrefix + name, Value: v, Reason: err}
	}
	*dst = b
	return nil
}

// Validate checks every setting before any work starts
func (c *Config) Validate() error {
	if c.HashSize <= 0 {
		return &ConfigurationError{Field: "hash_size", Value: c.HashSize, Reason: imageprocessor.ErrInvalidHashSize}
	}
	if err := matcher.ValidatePercentage(c.SimilarityPercentage); err != nil {
		return &ConfigurationError{Field: "similarity_percentage", Value: c.SimilarityPercentage, Reason: err}
	}
	if c.Workers < 0 {
		return &ConfigurationError{Field: "workers", Value: c.Workers, Reason: errors.New("must not be negative")}
	}
	if c.Edits.MinWidth <= 0 || c.Edits.MinHeight <= 0 {
		return &ConfigurationError{
			Field:  "edits.min_width/min_height",
			Value:  fmt.Sprintf("%dx%d", c.Edits.MinWidth, c.Edits.MinHeight),
			Reason: errors.New("must be positive"),
		}
	}
	if c.Edits.RatioWidth <= 0 || c.Edits.RatioHeight <= 0 {
		return &ConfigurationError{
			Field:  "edits.ratio_width/ratio_height",
			Value:  fmt.Sprintf("%d:%d", c.Edits.RatioWidth, c.Edits.RatioHeight),
			Reason: errors.New("must be positive"),
		}
	}
	if c.Edits.RatioTolerancePercent < 0 || c.Edits.RatioTolerancePercent >= 100 {
		return &ConfigurationError{
			Field:  "edits.ratio_tolerance_percent",
			Value:  c.Edits.RatioTolerancePercent,
			Reason: errors.New("must be in [0, 100)"),
		}
	}
	return nil
}

// Policy returns the need-edit policy of the configuration
func (c *Config) Policy() classifier.Policy {
	return classifier.Policy{
		MinWidth:              c.Edits.MinWidth,
		MinHeight:             c.Edits.MinHeight,
		RatioWidth:            c.Edits.RatioWidth,
		RatioHeight:           c.Edits.RatioHeight,
		RatioTolerancePercent: c.Edits.RatioTolerancePercent,
	}
}
