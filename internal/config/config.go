package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorsim/internal/reactor"
)

const (
	DefaultDt       = 1.0
	DefaultDuration = 600.0
	DefaultTarget   = 300.0
)

// Config is the file-level run configuration: how long to simulate, which
// policy drives the controls, reactor constant overrides, and the initial
// control inputs.
type Config struct {
	Dt           float64            `yaml:"dt"`
	Duration     float64            `yaml:"duration"`
	Policy       string             `yaml:"policy"`
	PolicyParams map[string]float64 `yaml:"policy_params"`
	Reactor      reactor.Overrides  `yaml:"reactor"`
	Controls     ControlsConfig     `yaml:"controls"`
}

// ControlsConfig sets the control inputs before the first tick. Nil fields
// keep the reactor's cold-start values.
type ControlsConfig struct {
	ControlRods   *float64 `yaml:"control_rods"`
	PumpPower     *float64 `yaml:"pump_power"`
	TurbinePitch  *float64 `yaml:"turbine_pitch"`
	GeneratorLoad *float64 `yaml:"generator_load"`
	GridLoad      *float64 `yaml:"grid_load"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Policy:   "none",
		PolicyParams: map[string]float64{
			"target": DefaultTarget,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Apply pushes the configured initial control inputs onto a reactor.
func (c *ControlsConfig) Apply(r *reactor.Reactor) {
	if c.ControlRods != nil {
		r.SetControlRods(*c.ControlRods)
	}
	if c.PumpPower != nil {
		r.SetPumpPower(*c.PumpPower)
	}
	if c.TurbinePitch != nil {
		r.SetTurbinePitch(*c.TurbinePitch)
	}
	if c.GeneratorLoad != nil {
		r.SetGeneratorLoad(*c.GeneratorLoad)
	}
	if c.GridLoad != nil {
		r.SetGridLoad(*c.GridLoad)
	}
}
