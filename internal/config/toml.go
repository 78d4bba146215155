// Package config provides configuration file parsing and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file.
type FileConfig struct {
	Generate GenerateConfig `toml:"generate" yaml:"generate"`
}

// GenerateConfig maps generation settings. Nil fields are unset.
type GenerateConfig struct {
	Threads    *int    `toml:"threads" yaml:"threads" env:"THREADS"`
	PwMin      *int    `toml:"pw-min" yaml:"pw-min" env:"PW_MIN"`
	PwMax      *int    `toml:"pw-max" yaml:"pw-max" env:"PW_MAX"`
	DefaultCap *int    `toml:"default-cap" yaml:"default-cap" env:"DEFAULT_CAP"`
	Format     *string `toml:"format" yaml:"format" env:"FORMAT"`
	Charset    *string `toml:"charset" yaml:"charset" env:"CHARSET"`
	Output     *string `toml:"output" yaml:"output" env:"OUTPUT"`
	Verbose    *bool   `toml:"verbose" yaml:"verbose" env:"VERBOSE"`
	Progress   *bool   `toml:"progress" yaml:"progress" env:"PROGRESS"`
	History    *bool   `toml:"history" yaml:"history" env:"HISTORY"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WORDCOMB_"

// LoadConfig reads a TOML config, or YAML when the path ends in .yaml/.yml.
// Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	return cfg, nil
}

// ApplyEnv overrides fields of cfg with WORDCOMB_* environment variables.
func ApplyEnv(cfg *FileConfig) error {
	return ApplyEnvFrom(cfg, nil)
}

// ApplyEnvFrom is ApplyEnv with an explicit environment; nil means the
// process environment.
func ApplyEnvFrom(cfg *FileConfig, environment map[string]string) error {
	var overrides GenerateConfig
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	merge(&cfg.Generate, overrides)
	return nil
}

func merge(dst *GenerateConfig, src GenerateConfig) {
	if src.Threads != nil {
		dst.Threads = src.Threads
	}
	if src.PwMin != nil {
		dst.PwMin = src.PwMin
	}
	if src.PwMax != nil {
		dst.PwMax = src.PwMax
	}
	if src.DefaultCap != nil {
		dst.DefaultCap = src.DefaultCap
	}
	if src.Format != nil {
		dst.Format = src.Format
	}
	if src.Charset != nil {
		dst.Charset = src.Charset
	}
	if src.Output != nil {
		dst.Output = src.Output
	}
	if src.Verbose != nil {
		dst.Verbose = src.Verbose
	}
	if src.Progress != nil {
		dst.Progress = src.Progress
	}
	if src.History != nil {
		dst.History = src.History
	}
}
