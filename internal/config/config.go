package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeStep = 3600.0
	DefaultSteps    = 24
	DefaultSegments = 10
	DefaultForcing  = "baseline"
	DefaultDataDir  = "./runs"
	DefaultMass     = 1.35e-4
)

type Config struct {
	TimeStep float64            `yaml:"time_step" env:"RHIZOSOIL_TIME_STEP"`
	Steps    int                `yaml:"steps" env:"RHIZOSOIL_STEPS"`
	Segments int                `yaml:"segments"`
	Growth   GrowthConfig       `yaml:"growth"`
	Forcing  string             `yaml:"forcing"`
	Inputs   map[string]float64 `yaml:"inputs,omitempty"`
	Scenario map[string]float64 `yaml:"scenario,omitempty"`
	Workers  int                `yaml:"workers" env:"RHIZOSOIL_WORKERS"`
	Record   []string           `yaml:"record,omitempty"`
	DataDir  string             `yaml:"data_dir" env:"RHIZOSOIL_DATA_DIR"`
}

type GrowthConfig struct {
	Pattern string  `yaml:"pattern"`
	Every   int     `yaml:"every"`
	Mass    float64 `yaml:"mass"`
	Limit   int     `yaml:"limit"`
}

func DefaultConfig() *Config {
	return &Config{
		TimeStep: DefaultTimeStep,
		Steps:    DefaultSteps,
		Segments: DefaultSegments,
		Growth: GrowthConfig{
			Pattern: "none",
			Mass:    DefaultMass,
		},
		Forcing: DefaultForcing,
		Workers: 1,
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML file over the defaults and then applies environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields whose RHIZOSOIL_* variable is set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("time_step must be positive, got %g", c.TimeStep))
	}
	if c.Steps <= 0 {
		errs = append(errs, fmt.Errorf("steps must be positive, got %d", c.Steps))
	}
	if c.Segments <= 0 {
		errs = append(errs, fmt.Errorf("segments must be positive, got %d", c.Segments))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Growth.Pattern != "" && c.Growth.Pattern != "none" && c.Growth.Every <= 0 {
		errs = append(errs, fmt.Errorf("growth.every must be positive for pattern %q", c.Growth.Pattern))
	}
	return errors.Join(errs...)
}
