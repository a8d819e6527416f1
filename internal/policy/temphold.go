package policy

import "github.com/san-kum/reactorsim/internal/reactor"

// TempHold steers the rods proportionally toward a target core temperature
// and opens the pump as pressure climbs toward the trip point. It never
// touches a melted-down or scrammed reactor.
type TempHold struct {
	TargetTemp float64
	RodGain    float64

	rods float64
	init bool
}

func NewTempHold(target float64) *TempHold {
	return &TempHold{
		TargetTemp: target,
		RodGain:    0.05,
	}
}

func (*TempHold) Name() string { return "temp-hold" }

func (p *TempHold) Act(s reactor.State, a Actuator) {
	if s.Meltdown || s.Scrammed {
		return
	}
	if !p.init {
		p.rods = s.ControlRods
		p.init = true
	}

	// Too hot: drive rods in. Too cold: withdraw. Proportional only; the
	// setter clamps to [0,100] for us but we track our own accumulator so
	// the adjustment stays continuous.
	tempError := s.CoreTemp - p.TargetTemp
	p.rods += tempError * p.RodGain
	if p.rods < 0 {
		p.rods = 0
	}
	if p.rods > 100 {
		p.rods = 100
	}
	a.SetControlRods(p.rods)

	// Pump harder as pressure approaches the interlock threshold.
	switch {
	case s.Pressure > 200:
		a.SetPumpPower(100)
	case s.Pressure > 150:
		a.SetPumpPower(80)
	default:
		a.SetPumpPower(60)
	}
}
