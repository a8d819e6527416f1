// Package scenario runs scripted reactor sequences: timed control actions
// over a configured reactor, optionally with a policy filling the gaps.
package scenario

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorsim/internal/policy"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Scenario is a scripted simulation sequence loaded from YAML.
type Scenario struct {
	Name         string             `yaml:"name"`
	Description  string             `yaml:"description"`
	Reactor      reactor.Overrides  `yaml:"reactor"`
	Dt           float64            `yaml:"dt"`
	Duration     float64            `yaml:"duration"`
	Policy       string             `yaml:"policy"`
	PolicyParams map[string]float64 `yaml:"policy_params"`
	Steps        []Step             `yaml:"steps"`
}

// Step fires once, on the first tick at or after its time.
type Step struct {
	At        float64            `yaml:"at"`
	Set       map[string]float64 `yaml:"set"`
	Scram     bool               `yaml:"scram"`
	ResetTrip bool               `yaml:"reset_trip"`
}

// RecordedEvent is an alarm or trip captured during a run.
type RecordedEvent struct {
	Time    float64
	Topic   reactor.Topic
	Message string
}

type Result struct {
	States []reactor.State
	Events []RecordedEvent
	Final  reactor.State
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Duration <= 0 {
		return fmt.Errorf("scenario %s: duration must be positive", sc.Name)
	}
	for _, st := range sc.Steps {
		for key := range st.Set {
			switch key {
			case "control_rods", "pump_power", "turbine_pitch", "generator_load", "grid_load":
			default:
				return fmt.Errorf("scenario %s: unknown control input %q", sc.Name, key)
			}
		}
	}
	return nil
}

// Run executes the scenario to completion or context cancellation. The
// returned result always includes whatever states were recorded before the
// error, if any.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	if err := sc.validate(); err != nil {
		return nil, err
	}

	dt := sc.Dt
	r := reactor.New(sc.Reactor)
	if dt <= 0 {
		dt = r.Config().Dt
	}

	pol, err := policy.Get(sc.Policy, sc.PolicyParams)
	if err != nil {
		return nil, err
	}

	result := &Result{
		States: make([]reactor.State, 0, int(sc.Duration/dt)+1),
	}
	r.On(reactor.TopicUpdate, func(ev reactor.Event) {
		result.States = append(result.States, ev.State)
	})
	record := func(ev reactor.Event) {
		result.Events = append(result.Events, RecordedEvent{
			Time:    ev.State.Time,
			Topic:   ev.Topic,
			Message: ev.Message,
		})
	}
	r.On(reactor.TopicAlarm, record)
	r.On(reactor.TopicTrip, record)

	steps := make([]Step, len(sc.Steps))
	copy(steps, sc.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	next := 0
	for t := 0.0; t < sc.Duration; t += dt {
		select {
		case <-ctx.Done():
			result.Final = r.Snapshot()
			return result, ctx.Err()
		default:
		}

		for next < len(steps) && steps[next].At <= t {
			apply(r, steps[next])
			next++
		}
		pol.Act(r.Snapshot(), r)
		r.Tick(dt)
	}

	result.Final = r.Snapshot()
	return result, nil
}

func apply(r *reactor.Reactor, st Step) {
	for key, v := range st.Set {
		switch key {
		case "control_rods":
			r.SetControlRods(v)
		case "pump_power":
			r.SetPumpPower(v)
		case "turbine_pitch":
			r.SetTurbinePitch(v)
		case "generator_load":
			r.SetGeneratorLoad(v)
		case "grid_load":
			r.SetGridLoad(v)
		}
	}
	if st.Scram {
		r.Scram()
	}
	if st.ResetTrip {
		r.ResetTrip()
	}
}
