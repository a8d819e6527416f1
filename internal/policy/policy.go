// Package policy provides automatic operator policies. A policy reads the
// reactor's public snapshot and issues control calls through the Actuator —
// it never touches simulation state directly.
package policy

import "github.com/san-kum/reactorsim/internal/reactor"

// Actuator is the control surface a policy may drive. *reactor.Reactor
// satisfies it.
type Actuator interface {
	SetControlRods(p float64)
	SetPumpPower(p float64)
	SetTurbinePitch(p float64)
	SetGeneratorLoad(p float64)
	Scram()
	ResetTrip()
}

type Policy interface {
	Name() string
	Act(s reactor.State, a Actuator)
}

// None leaves the controls wherever the operator put them.
type None struct{}

func NewNone() *None { return &None{} }

func (*None) Name() string                { return "none" }
func (*None) Act(reactor.State, Actuator) {}
