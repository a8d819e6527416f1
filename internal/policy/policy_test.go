package policy

import (
	"math"
	"testing"

	"github.com/san-kum/reactorsim/internal/reactor"
)

func TestNone(t *testing.T) {
	r := reactor.New(nil)
	r.SetControlRods(42)

	p := NewNone()
	p.Act(r.Snapshot(), r)

	if got := r.Snapshot().ControlRods; got != 42 {
		t.Errorf("none policy must not move controls, rods %f", got)
	}
}

func TestTempHoldDirection(t *testing.T) {
	r := reactor.New(nil)
	r.SetControlRods(50)
	p := NewTempHold(300)

	// Cold core: policy should withdraw rods.
	p.Act(r.Snapshot(), r)
	if got := r.Snapshot().ControlRods; got >= 50 {
		t.Errorf("cold core should withdraw rods, got %f", got)
	}

	// Hot core: rods go back in.
	r2 := reactor.New(nil)
	if err := r2.Restore("core_temp=900\n"); err != nil {
		t.Fatal(err)
	}
	r2.SetControlRods(50)
	p2 := NewTempHold(300)
	p2.Act(r2.Snapshot(), r2)
	if got := r2.Snapshot().ControlRods; got <= 50 {
		t.Errorf("hot core should insert rods, got %f", got)
	}
}

func TestTempHoldRespectsTrips(t *testing.T) {
	r := reactor.New(nil)
	r.Scram()
	p := NewTempHold(300)
	p.Act(r.Snapshot(), r)

	if got := r.Snapshot().ControlRods; got != 100 {
		t.Errorf("policy must not move rods on a scrammed reactor, got %f", got)
	}
}

func TestTempHoldConverges(t *testing.T) {
	r := reactor.New(nil)
	p := NewTempHold(30)

	for i := 0; i < 800; i++ {
		p.Act(r.Snapshot(), r)
		r.Tick(1)
		s := r.Snapshot()
		if s.Meltdown || s.Scrammed {
			t.Fatalf("policy tripped the reactor at t=%f (temp %f, pressure %f)",
				s.Time, s.CoreTemp, s.Pressure)
		}
	}

	got := r.Snapshot().CoreTemp
	if got < 25 || got > 35 {
		t.Errorf("expected core temp near 30 after settling, got %f", got)
	}
}

func TestLoadFollowEngagesGenerator(t *testing.T) {
	r := reactor.New(nil)
	r.SetGridLoad(500)
	p := NewLoadFollow()

	p.Act(r.Snapshot(), r)
	if got := r.Snapshot().GeneratorLoad; got != 100 {
		t.Errorf("load-follow should open the generator, got %f", got)
	}

	// Under demand with a stalled turbine the policy withdraws rods.
	if got := r.Snapshot().ControlRods; got >= 100 {
		t.Errorf("load-follow should withdraw rods under demand, got %f", got)
	}
}

func TestLoadFollowTargetDeliversDemand(t *testing.T) {
	r := reactor.New(nil)
	r.SetGridLoad(1500)
	p := NewLoadFollow()
	p.Act(r.Snapshot(), r)

	// At the target speed and full generator load, delivered output must
	// equal demand, not just be proportional to it.
	cfg := reactor.DefaultConfig()
	delivered := p.pid.Target * cfg.GeneratorMaxOutput * cfg.TurbineEfficiency / cfg.TurbineMaxRPM
	if math.Abs(delivered-1500) > 1e-9 {
		t.Errorf("target rpm %f delivers %f, want 1500", p.pid.Target, delivered)
	}
}

func TestLoadFollowRatioOverride(t *testing.T) {
	p, err := Get("load-follow", map[string]float64{"rpm_per_output": 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.(*LoadFollow).rpmPerUnit; got != 2 {
		t.Errorf("rpm_per_output override not applied, got %f", got)
	}
}
