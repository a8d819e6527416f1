package config

func f(v float64) *float64 { return &v }

var Presets = map[string]*Config{
	"cold-start": {
		Dt: 1.0, Duration: 1200, Policy: "temp-hold",
		PolicyParams: map[string]float64{"target": 300},
	},
	"manual-startup": {
		Dt: 1.0, Duration: 600, Policy: "none",
		Controls: ControlsConfig{ControlRods: f(40), PumpPower: f(80), GeneratorLoad: f(50), GridLoad: f(500)},
	},
	"load-follow": {
		Dt: 1.0, Duration: 1800, Policy: "load-follow",
		Controls: ControlsConfig{GridLoad: f(800)},
	},
	"fragile": {
		// Tight thresholds: the interlocks fire within a short run.
		Dt: 1.0, Duration: 300, Policy: "none",
		Reactor:  map[string]float64{"pressure_safe": 120, "meltdown_temp": 400},
		Controls: ControlsConfig{ControlRods: f(0), PumpPower: f(20)},
	},
	"scram-drill": {
		Dt: 0.5, Duration: 120, Policy: "none",
		Controls: ControlsConfig{ControlRods: f(30), PumpPower: f(100), TurbinePitch: f(100)},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
