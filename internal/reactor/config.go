package reactor

// Config holds the tunable constants for one reactor instance. A Config is
// fixed at construction; ticking never mutates it.
type Config struct {
	Dt                 float64 `yaml:"dt" json:"dt"`
	CoreMass           float64 `yaml:"core_mass" json:"core_mass"`
	HeatCapacity       float64 `yaml:"heat_capacity" json:"heat_capacity"`
	MaxCoreTemp        float64 `yaml:"max_core_temp" json:"max_core_temp"`
	AmbientTemp        float64 `yaml:"ambient_temp" json:"ambient_temp"`
	DecayPower         float64 `yaml:"decay_power" json:"decay_power"`
	BaseReactivity     float64 `yaml:"base_reactivity" json:"base_reactivity"`
	RodEffectiveness   float64 `yaml:"rod_effectiveness" json:"rod_effectiveness"`
	WaterCapacity      float64 `yaml:"water_capacity" json:"water_capacity"`
	SteamCapacity      float64 `yaml:"steam_capacity" json:"steam_capacity"`
	PumpMaxFlow        float64 `yaml:"pump_max_flow" json:"pump_max_flow"`
	EvaporationConst   float64 `yaml:"evaporation_const" json:"evaporation_const"`
	TurbineMaxRPM      float64 `yaml:"turbine_max_rpm" json:"turbine_max_rpm"`
	TurbineEfficiency  float64 `yaml:"turbine_efficiency" json:"turbine_efficiency"`
	GeneratorMaxOutput float64 `yaml:"generator_max_output" json:"generator_max_output"`
	GridNominalVoltage float64 `yaml:"grid_nominal_voltage" json:"grid_nominal_voltage"`
	PressureSafe       float64 `yaml:"pressure_safe" json:"pressure_safe"`
	MeltdownTemp       float64 `yaml:"meltdown_temp" json:"meltdown_temp"`
}

// Overrides maps configuration field names (snake_case, as in the serialized
// form) to replacement values. Keys that name no Config field are ignored.
type Overrides map[string]float64

func DefaultConfig() Config {
	return Config{
		Dt:                 1.0,
		CoreMass:           100000,
		HeatCapacity:       5.0,
		MaxCoreTemp:        1000,
		AmbientTemp:        20,
		DecayPower:         1e-5,
		BaseReactivity:     1.0,
		RodEffectiveness:   1.0,
		WaterCapacity:      100000,
		SteamCapacity:      50000,
		PumpMaxFlow:        1000,
		EvaporationConst:   0.001,
		TurbineMaxRPM:      3600,
		TurbineEfficiency:  0.85,
		GeneratorMaxOutput: 5000,
		GridNominalVoltage: 400,
		PressureSafe:       250,
		MeltdownTemp:       1200,
	}
}

func (c *Config) field(name string) *float64 {
	switch name {
	case "dt":
		return &c.Dt
	case "core_mass":
		return &c.CoreMass
	case "heat_capacity":
		return &c.HeatCapacity
	case "max_core_temp":
		return &c.MaxCoreTemp
	case "ambient_temp":
		return &c.AmbientTemp
	case "decay_power":
		return &c.DecayPower
	case "base_reactivity":
		return &c.BaseReactivity
	case "rod_effectiveness":
		return &c.RodEffectiveness
	case "water_capacity":
		return &c.WaterCapacity
	case "steam_capacity":
		return &c.SteamCapacity
	case "pump_max_flow":
		return &c.PumpMaxFlow
	case "evaporation_const":
		return &c.EvaporationConst
	case "turbine_max_rpm":
		return &c.TurbineMaxRPM
	case "turbine_efficiency":
		return &c.TurbineEfficiency
	case "generator_max_output":
		return &c.GeneratorMaxOutput
	case "grid_nominal_voltage":
		return &c.GridNominalVoltage
	case "pressure_safe":
		return &c.PressureSafe
	case "meltdown_temp":
		return &c.MeltdownTemp
	}
	return nil
}

func (c *Config) apply(ov Overrides) {
	for name, v := range ov {
		if p := c.field(name); p != nil {
			*p = v
		}
	}
}
