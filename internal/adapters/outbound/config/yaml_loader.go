package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pipegate/pipegate/internal/domain"
)

const fileName = ".pipegate.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .pipegate.yaml and
// overlaying environment target overrides.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .pipegate.yaml from projectPath. Returns DefaultConfig when the
// file does not exist; explicit values override defaults, and named
// environment variables override both. Environment values are read once here,
// at session start.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return domain.ProjectConfig{}, err
		}
	} else {
		var fileCfg domain.ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// mergeConfig overlays explicit file values on top of the defaults. Non-zero
// values always win.
func mergeConfig(base, override domain.ProjectConfig) domain.ProjectConfig {
	result := base

	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	if override.Targets.MinScore != 0 {
		result.Targets.MinScore = override.Targets.MinScore
	}
	if override.Targets.TimeoutMinutes != 0 {
		result.Targets.TimeoutMinutes = override.Targets.TimeoutMinutes
	}
	if override.Targets.AvailabilityPercent != 0 {
		result.Targets.AvailabilityPercent = override.Targets.AvailabilityPercent
	}
	if len(override.Weights) > 0 {
		result.Weights = override.Weights
	}
	if len(override.Skip.Dimensions) > 0 {
		result.Skip.Dimensions = override.Skip.Dimensions
	}
	if len(override.Skip.Checks) > 0 {
		result.Skip.Checks = override.Skip.Checks
	}
	if len(override.ExcludePaths) > 0 {
		result.ExcludePaths = override.ExcludePaths
	}
	if len(override.CommandChecks) > 0 {
		result.CommandChecks = override.CommandChecks
	}

	return result
}
