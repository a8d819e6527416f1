package reactor

import "math"

// Reactor owns a Config and a State and advances them one deterministic tick
// at a time. Instances are not goroutine-safe: exactly one goroutine may tick
// a reactor, and event handlers run synchronously inside that tick.
type Reactor struct {
	cfg    Config
	state  State
	events notifier
}

// New builds a reactor from the default configuration with ov applied on top.
// Unrecognized override keys are ignored. The reactor starts cold: core at
// ambient temperature, rods fully inserted, water at 90% and steam at 10% of
// capacity, time zero.
func New(ov Overrides) *Reactor {
	cfg := DefaultConfig()
	cfg.apply(ov)
	return &Reactor{
		cfg:   cfg,
		state: initialState(cfg),
	}
}

func (r *Reactor) Config() Config { return r.cfg }

// Snapshot returns a value copy of the current state. Safe to call from event
// handlers.
func (r *Reactor) Snapshot() State { return r.state }

// On registers h for topic. Handlers are invoked in registration order; a
// handler that panics is silenced without affecting other handlers or the
// tick in progress.
func (r *Reactor) On(topic Topic, h Handler) error {
	return r.events.on(topic, h)
}

// Setters clamp silently; out-of-range input is never an error. Changes take
// effect on the next tick.

func (r *Reactor) SetControlRods(p float64)   { r.state.ControlRods = clamp(p, 0, 100) }
func (r *Reactor) SetPumpPower(p float64)     { r.state.PumpPower = clamp(p, 0, 100) }
func (r *Reactor) SetTurbinePitch(p float64)  { r.state.TurbinePitch = clamp(p, 0, 100) }
func (r *Reactor) SetGeneratorLoad(p float64) { r.state.GeneratorLoad = clamp(p, 0, 100) }
func (r *Reactor) SetGridLoad(v float64)      { r.state.GridLoad = math.Max(0, v) }

// Scram drives an emergency shutdown: rods fully in, reactivity zeroed until
// the trip is reset. Idempotent; publishes a trip event on every call.
func (r *Reactor) Scram() {
	r.state.Scrammed = true
	r.state.ControlRods = 100
	r.events.publish(Event{Topic: TopicTrip, Message: "SCRAM", State: r.state})
}

// ResetTrip clears the scram latch. It deliberately does not consult the
// meltdown flag: resetting a melted-down reactor clears scrammed while
// meltdown stays latched and the tick engine keeps taking the terminal
// branch.
func (r *Reactor) ResetTrip() {
	r.state.Scrammed = false
	r.events.publish(Event{Topic: TopicAlarm, Message: "Trip reset", State: r.state})
}

// Tick advances the simulation by dt seconds. dt <= 0 selects the configured
// default step. Exactly one update event is published per call.
func (r *Reactor) Tick(dt float64) {
	if dt <= 0 {
		dt = r.cfg.Dt
	}
	cfg := &r.cfg
	s := &r.state

	if s.Meltdown {
		// Terminal branch: the core only gets hotter.
		s.CoreTemp += 10 * dt
		s.Time += dt
		r.events.publish(Event{Topic: TopicUpdate, State: *s})
		return
	}

	// Reactivity and thermal power. Water density is floored so a dry core
	// still computes, just at negligible moderation.
	rodFactor := 1 - (s.ControlRods/100)*cfg.RodEffectiveness
	scramFactor := 1.0
	if s.Scrammed {
		scramFactor = 0
	}
	reactivity := cfg.BaseReactivity * rodFactor * scramFactor
	waterDensity := math.Max(0.01, s.Water/cfg.WaterCapacity)
	s.ReactorPower = reactivity * waterDensity * 1e5

	// Heat in, pump cooling, evaporation.
	heatIn := s.ReactorPower * dt
	pumpFlow := (s.PumpPower / 100) * cfg.PumpMaxFlow
	waterFlow := math.Min(s.Water, pumpFlow*dt)
	cooling := waterFlow * 0.5
	evaporation := math.Min(math.Max(0, heatIn*cfg.EvaporationConst), s.Water)

	s.CoreTemp += (heatIn - cooling) / (cfg.CoreMass * cfg.HeatCapacity)
	s.CoreTemp -= (s.CoreTemp - cfg.AmbientTemp) * 0.01 * dt

	s.Water -= evaporation
	s.Steam = math.Min(cfg.SteamCapacity, s.Steam+evaporation)

	// Steam through the turbine.
	potentialFlow := (s.TurbinePitch / 100) * 1000 * dt
	steamToTurbine := math.Min(s.Steam, potentialFlow)
	s.Steam -= steamToTurbine

	rpmIncrease := steamToTurbine * 0.5
	rpmDecay := 10 * dt
	s.TurbineRPM = clamp(s.TurbineRPM+rpmIncrease-rpmDecay, 0, cfg.TurbineMaxRPM)

	// Generation; undelivered output feeds back as waste heat.
	mechanicalPower := (s.TurbineRPM / cfg.TurbineMaxRPM) * cfg.GeneratorMaxOutput * cfg.TurbineEfficiency
	allowedOutput := mechanicalPower * (s.GeneratorLoad / 100)
	delivered := math.Min(allowedOutput, s.GridLoad)
	wasted := allowedOutput - delivered
	s.CoreTemp += wasted * 1e-6

	s.Pressure = math.Max(0, 100+(s.Steam/cfg.SteamCapacity)*200-(s.PumpPower/100)*50)

	if delivered < s.GridLoad*0.9 {
		s.GridVoltage = cfg.GridNominalVoltage * (delivered / math.Max(1, s.GridLoad))
	} else {
		s.GridVoltage = cfg.GridNominalVoltage
	}

	// Decay heat keeps a scrammed core warm.
	if s.Scrammed {
		s.CoreTemp += cfg.DecayPower * dt * 1000
	}

	r.checkInterlocks()

	// Passive condensation when the turbine is near-stalled and the steam
	// space is above its floor.
	if s.TurbineRPM < 100 && s.Steam > cfg.SteamCapacity*0.1 {
		condense := math.Min(s.Steam, 100*dt)
		s.Steam -= condense
		s.Water = math.Min(cfg.WaterCapacity, s.Water+condense)
	}

	s.Time += dt
	r.events.publish(Event{Topic: TopicUpdate, State: *s})
}

// checkInterlocks runs the safety monitor against the freshly computed state.
// Over-temperature latches the terminal meltdown flag; over-pressure forces a
// scram.
func (r *Reactor) checkInterlocks() {
	s := &r.state
	if s.CoreTemp >= r.cfg.MeltdownTemp {
		s.Meltdown = true
		r.events.publish(Event{Topic: TopicTrip, Message: "Meltdown", State: *s})
	}
	if s.Pressure >= r.cfg.PressureSafe {
		r.Scram()
		r.events.publish(Event{Topic: TopicAlarm, Message: "High pressure - SCRAM engaged", State: *s})
	}
}

// RunFor ticks the reactor floor(seconds/interval) times. interval <= 0
// selects the configured default step.
func (r *Reactor) RunFor(seconds, interval float64) {
	if interval <= 0 {
		interval = r.cfg.Dt
	}
	steps := int(seconds / interval)
	for i := 0; i < steps; i++ {
		r.Tick(interval)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
