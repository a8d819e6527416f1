package reactor

// State is the full simulation state vector. The owning Reactor mutates it
// during ticks; everyone else sees value copies via Snapshot.
type State struct {
	CoreTemp      float64 `json:"core_temp"`
	ReactorPower  float64 `json:"reactor_power"`
	ControlRods   float64 `json:"control_rods"`
	PumpPower     float64 `json:"pump_power"`
	Water         float64 `json:"water"`
	Steam         float64 `json:"steam"`
	TurbineRPM    float64 `json:"turbine_rpm"`
	TurbinePitch  float64 `json:"turbine_pitch"`
	GeneratorLoad float64 `json:"generator_load"`
	GridLoad      float64 `json:"grid_load"`
	GridVoltage   float64 `json:"grid_voltage"`
	Scrammed      bool    `json:"scrammed"`
	Meltdown      bool    `json:"meltdown"`
	Pressure      float64 `json:"pressure"`
	Time          float64 `json:"time"`
}

func initialState(cfg Config) State {
	return State{
		CoreTemp:     cfg.AmbientTemp,
		ControlRods:  100,
		PumpPower:    100,
		Water:        cfg.WaterCapacity * 0.9,
		Steam:        cfg.SteamCapacity * 0.1,
		TurbinePitch: 100,
		GridVoltage:  cfg.GridNominalVoltage,
		Pressure:     100,
	}
}

// floatField resolves the named float field, or nil for bools and unknowns.
func (s *State) floatField(name string) *float64 {
	switch name {
	case "core_temp":
		return &s.CoreTemp
	case "reactor_power":
		return &s.ReactorPower
	case "control_rods":
		return &s.ControlRods
	case "pump_power":
		return &s.PumpPower
	case "water":
		return &s.Water
	case "steam":
		return &s.Steam
	case "turbine_rpm":
		return &s.TurbineRPM
	case "turbine_pitch":
		return &s.TurbinePitch
	case "generator_load":
		return &s.GeneratorLoad
	case "grid_load":
		return &s.GridLoad
	case "grid_voltage":
		return &s.GridVoltage
	case "pressure":
		return &s.Pressure
	case "time":
		return &s.Time
	}
	return nil
}

func (s *State) boolField(name string) *bool {
	switch name {
	case "scrammed":
		return &s.Scrammed
	case "meltdown":
		return &s.Meltdown
	}
	return nil
}

// fieldOrder fixes the serialized layout of a snapshot.
var fieldOrder = []string{
	"core_temp",
	"reactor_power",
	"control_rods",
	"pump_power",
	"water",
	"steam",
	"turbine_rpm",
	"turbine_pitch",
	"generator_load",
	"grid_load",
	"grid_voltage",
	"scrammed",
	"meltdown",
	"pressure",
	"time",
}
