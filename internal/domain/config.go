package domain

import (
	"fmt"
	"os"
	"strconv"
)

// Targets are the numeric thresholds declared for a session. They are read
// once at session start and recorded verbatim in the results document.
type Targets struct {
	TimeoutMinutes      int     `yaml:"timeout_minutes"      json:"timeout_minutes"`
	MinScore            int     `yaml:"min_score"            json:"min_score"`
	AvailabilityPercent float64 `yaml:"availability_percent" json:"availability_percent"`
}

// CommandCheck declares an external command run as a graded check within a
// dimension. The command is timeout-bounded; exceeding the deadline counts as
// a failed check, not a session abort.
type CommandCheck struct {
	Dimension      string   `yaml:"dimension"       json:"dimension"`
	Name           string   `yaml:"name"            json:"name"`
	Points         int      `yaml:"points"          json:"points"`
	Command        []string `yaml:"command"         json:"command"`
	TimeoutSeconds int      `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// SkipConfig names dimensions and checks excluded from a run.
type SkipConfig struct {
	Dimensions []string `yaml:"dimensions" json:"dimensions,omitempty"`
	Checks     []string `yaml:"checks"     json:"checks,omitempty"`
}

// ProjectConfig is the per-project configuration loaded from .pipegate.yaml,
// with environment overrides applied on top.
type ProjectConfig struct {
	OutputDir     string         `yaml:"output_dir"     json:"output_dir,omitempty"`
	Targets       Targets        `yaml:"targets"        json:"targets"`
	Weights       map[string]int `yaml:"weights"        json:"weights,omitempty"`
	Skip          SkipConfig     `yaml:"skip"           json:"skip,omitempty"`
	ExcludePaths  []string       `yaml:"exclude_paths"  json:"exclude_paths,omitempty"`
	CommandChecks []CommandCheck `yaml:"command_checks" json:"command_checks,omitempty"`
}

// Environment variable names for target overrides.
const (
	EnvMinScore           = "PIPEGATE_MIN_SCORE"
	EnvTimeoutMinutes     = "PIPEGATE_TIMEOUT_MINUTES"
	EnvAvailabilityTarget = "PIPEGATE_AVAILABILITY_TARGET"
)

// DefaultConfig returns the configuration used when no .pipegate.yaml exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		OutputDir: ".pipegate",
		Targets: Targets{
			TimeoutMinutes:      10,
			MinScore:            80,
			AvailabilityPercent: 99.9,
		},
		ExcludePaths: []string{".git", "vendor", "node_modules"},
	}
}

// ApplyEnvOverrides overlays named environment values on the targets. Invalid
// values are ignored in favor of the configured ones.
func (c *ProjectConfig) ApplyEnvOverrides() {
	if v, err := strconv.Atoi(os.Getenv(EnvMinScore)); err == nil && v > 0 {
		c.Targets.MinScore = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvTimeoutMinutes)); err == nil && v > 0 {
		c.Targets.TimeoutMinutes = v
	}
	if v, err := strconv.ParseFloat(os.Getenv(EnvAvailabilityTarget), 64); err == nil && v > 0 {
		c.Targets.AvailabilityPercent = v
	}
}

// IsSkippedDimension reports whether the named dimension is excluded.
func (c ProjectConfig) IsSkippedDimension(name string) bool {
	for _, s := range c.Skip.Dimensions {
		if s == name {
			return true
		}
	}
	return false
}

// IsSkippedCheck reports whether the named check is excluded.
func (c ProjectConfig) IsSkippedCheck(name string) bool {
	for _, s := range c.Skip.Checks {
		if s == name {
			return true
		}
	}
	return false
}

// EffectiveWeight returns the configured weight for a dimension, falling back
// to the built-in default.
func (c ProjectConfig) EffectiveWeight(dimension string, defaultWeight int) int {
	if w, ok := c.Weights[dimension]; ok {
		return w
	}
	return defaultWeight
}

// Validate rejects configurations that would produce a misleading composite.
// In particular, effective weights that do not sum to exactly 100 are a
// configuration error surfaced at session start, never renormalized.
func (c ProjectConfig) Validate(activeWeights map[string]int) error {
	if c.Targets.MinScore < 0 || c.Targets.MinScore > 100 {
		return fmt.Errorf("min_score %d is outside [0,100]", c.Targets.MinScore)
	}
	if c.Targets.TimeoutMinutes <= 0 {
		return fmt.Errorf("timeout_minutes must be positive, got %d", c.Targets.TimeoutMinutes)
	}
	if c.Targets.AvailabilityPercent <= 0 || c.Targets.AvailabilityPercent > 100 {
		return fmt.Errorf("availability_percent %.2f is outside (0,100]", c.Targets.AvailabilityPercent)
	}

	sum := 0
	for name, w := range activeWeights {
		if w <= 0 {
			return fmt.Errorf("dimension %q has non-positive weight %d", name, w)
		}
		sum += w
	}
	if sum != 100 {
		return fmt.Errorf("dimension weights sum to %d, want exactly 100", sum)
	}

	for name := range c.Weights {
		if _, ok := activeWeights[name]; !ok && !c.IsSkippedDimension(name) {
			return fmt.Errorf("weight configured for unknown dimension %q", name)
		}
	}

	for i, cc := range c.CommandChecks {
		if cc.Dimension == "" || cc.Name == "" {
			return fmt.Errorf("command_checks[%d]: dimension and name are required", i)
		}
		if len(cc.Command) == 0 {
			return fmt.Errorf("command check %q has an empty command", cc.Name)
		}
		if cc.Points <= 0 {
			return fmt.Errorf("command check %q has non-positive points %d", cc.Name, cc.Points)
		}
		if cc.TimeoutSeconds <= 0 {
			return fmt.Errorf("command check %q has non-positive timeout_seconds %d", cc.Name, cc.TimeoutSeconds)
		}
	}

	return nil
}
