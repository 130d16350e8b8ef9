// Package config resolves the CLI's own settings from layered YAML files,
// IKE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/ikejs/ike/internal/structured"
)

// Settings are the resolved CLI settings.
type Settings struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		LogLevel:  "warn",
		LogFormat: "text",
		Workers:   4,
	}
}

// Keys lists every settings key.
var Keys = []string{"log_level", "log_format", "workers"}

var (
	logLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	logFormats = []string{"text", "json", "logfmt"}
)

// LoadOptions controls Load.
type LoadOptions struct {
	Discover DiscoverOptions

	// File, when set, replaces discovery with a single explicit file that
	// must exist.
	File string

	// Overrides take precedence over files and the environment. Typically
	// the command-line flags the user actually set.
	Overrides map[string]any
}

// Load resolves settings from defaults, config layers, IKE_* environment
// variables and overrides, in increasing precedence. The returned layers
// describe which files were found.
func Load(opts LoadOptions) (*Settings, []ConfigLayerInfo, error) {
	v := viper.New()
	defaults := Defaults()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("workers", defaults.Workers)

	var layers []ConfigLayerInfo
	if opts.File != "" {
		layers = []ConfigLayerInfo{{Path: opts.File, Level: LevelFile}}
	} else {
		layers = DiscoverPaths(opts.Discover)
	}

	for i := range layers {
		layer := &layers[i]
		values, err := structured.Read[map[string]any](layer.Path)
		if errors.Is(err, structured.ErrNotFound) && layer.Level != LevelFile {
			continue
		}
		if err != nil {
			layer.Err = err
			return nil, layers, fmt.Errorf("loading %s config: %w", layer.Level, err)
		}
		if err := v.MergeConfigMap(values); err != nil {
			layer.Err = err
			return nil, layers, fmt.Errorf("merging %s config %s: %w", layer.Level, layer.Path, err)
		}
		layer.Loaded = true
	}

	v.SetEnvPrefix("IKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, layers, fmt.Errorf("decoding settings: %w", err)
	}
	if errs := Validate(&s); len(errs) > 0 {
		return nil, layers, &ValidationError{Errors: errs}
	}
	return &s, layers, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks Settings for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(s *Settings) []string {
	var errs []string

	if !slices.Contains(logLevels, s.LogLevel) {
		errs = append(errs, fmt.Sprintf("log_level: unknown level '%s' (want one of %s)", s.LogLevel, strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(logFormats, s.LogFormat) {
		errs = append(errs, fmt.Sprintf("log_format: unknown format '%s' (want one of %s)", s.LogFormat, strings.Join(logFormats, ", ")))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Sprintf("workers: must be at least 1, got %d", s.Workers))
	}

	return errs
}
