package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads layered yaml configuration: base.yaml first, then the
// environment-specific file (<env>.yaml) on top of it. Environment
// variables are applied last and have the highest priority.
func Load(env, configDir string) (*Config, error) {
	if configDir == "" {
		configDir = "config"
	}

	cfg := &Config{}

	if err := loadYAMLInto(filepath.Join(configDir, "base.yaml"), cfg); err != nil {
		return nil, fmt.Errorf("failed to load base.yaml: %w", err)
	}

	if env != "" && env != "base" {
		envFile := filepath.Join(configDir, fmt.Sprintf("%s.yaml", env))
		if _, err := os.Stat(envFile); err == nil {
			if err := loadYAMLInto(envFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load %s.yaml: %w", env, err)
			}
		}
	}

	cfg.OverrideFromEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// loadYAMLInto unmarshals a yaml file over an existing config, so keys
// present in the file override and absent keys are left alone.
func loadYAMLInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
