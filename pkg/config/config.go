// Package config handles orchestrator configuration loading
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stagehand/stagehand/pkg/types"
)

// Default returns the built-in configuration
func Default() *types.Config {
	return &types.Config{
		RuntimeMode:     types.RuntimeModeDefault,
		BundleDir:       "app/bundles",
		HotWrapper:      "scripts/nodemon",
		ArtifactPattern: "build/%s.js",
		BatchLimit:      0,
		LogLevel:        "info",
		Watch: &types.WatchConfig{
			SettleMs: 100,
		},
	}
}

// Load reads configuration from path. An empty path searches for
// stagehand.yaml in the working directory and falls back to defaults
// when absent; an explicit path must exist. RUNTIME_MODE from the
// ambient environment overrides the file value.
func Load(path string) (*types.Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("runtime_mode", defaults.RuntimeMode)
	v.SetDefault("bundle_dir", defaults.BundleDir)
	v.SetDefault("hot_wrapper", defaults.HotWrapper)
	v.SetDefault("artifact_pattern", defaults.ArtifactPattern)
	v.SetDefault("batch_limit", defaults.BatchLimit)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("watch.settle_ms", defaults.Watch.SettleMs)

	if err := v.BindEnv("runtime_mode", types.RuntimeModeVar); err != nil {
		return nil, fmt.Errorf("binding %s: %w", types.RuntimeModeVar, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName("stagehand")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for usable values
func Validate(cfg *types.Config) error {
	if cfg.BundleDir == "" {
		return fmt.Errorf("bundle_dir must not be empty")
	}
	if !strings.Contains(cfg.ArtifactPattern, "%s") {
		return fmt.Errorf("artifact_pattern %q must contain %%s", cfg.ArtifactPattern)
	}
	if cfg.BatchLimit < 0 {
		return fmt.Errorf("batch_limit must not be negative")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.Watch != nil && cfg.Watch.SettleMs < 0 {
		return fmt.Errorf("watch.settle_ms must not be negative")
	}
	return nil
}

// WriteDefault materializes the default configuration as YAML at path.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
