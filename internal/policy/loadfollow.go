package policy

import "github.com/san-kum/reactorsim/internal/reactor"

// PID is a scalar proportional-integral-derivative regulator.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Compute(value, t float64) float64 {
	err := p.Target - value

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.Kp * err
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.Kp * err
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt

	p.prevErr = err
	p.prevT = t

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// LoadFollow matches generator output to grid demand: a PID on turbine speed
// tracks the rpm needed for the demanded output, actuated through rod
// position, while the generator load setpoint follows demand directly.
type LoadFollow struct {
	pid        *PID
	rpmPerUnit float64
	rods       float64
	init       bool
}

func NewLoadFollow() *LoadFollow {
	// Gains tuned for the default configuration's one-second step.
	cfg := reactor.DefaultConfig()
	return &LoadFollow{
		pid:        NewPID(0.02, 0.001, 0.01, 0),
		rpmPerUnit: cfg.TurbineMaxRPM / (cfg.GeneratorMaxOutput * cfg.TurbineEfficiency),
	}
}

func (*LoadFollow) Name() string { return "load-follow" }

func (p *LoadFollow) Act(s reactor.State, a Actuator) {
	if s.Meltdown || s.Scrammed {
		return
	}
	if !p.init {
		p.rods = s.ControlRods
		p.init = true
	}

	a.SetGeneratorLoad(100)
	a.SetTurbinePitch(100)

	// At full generator load, delivered output is rpm scaled by
	// efficiency*max_output/max_rpm. Invert that to find the speed that
	// meets demand exactly, and chase it with the rods.
	p.pid.Target = s.GridLoad * p.rpmPerUnit
	u := p.pid.Compute(s.TurbineRPM, s.Time)

	p.rods -= u
	if p.rods < 0 {
		p.rods = 0
	}
	if p.rods > 100 {
		p.rods = 100
	}
	a.SetControlRods(p.rods)
}
