package reactor

import "testing"

func TestOnUnknownTopic(t *testing.T) {
	r := New(nil)
	if err := r.On(Topic(7), func(Event) {}); err != ErrUnknownTopic {
		t.Errorf("expected ErrUnknownTopic, got %v", err)
	}
	if err := r.On(Topic(-1), func(Event) {}); err != ErrUnknownTopic {
		t.Errorf("expected ErrUnknownTopic, got %v", err)
	}
	if err := r.On(TopicUpdate, func(Event) {}); err != nil {
		t.Errorf("valid topic should register, got %v", err)
	}
}

func TestUpdatePerTick(t *testing.T) {
	r := New(Overrides{"meltdown_temp": 20})
	updates := 0
	if err := r.On(TopicUpdate, func(Event) { updates++ }); err != nil {
		t.Fatal(err)
	}

	r.SetControlRods(0)
	for i := 0; i < 5; i++ {
		r.Tick(1) // first tick melts down; the rest take the terminal branch
	}
	if !r.Snapshot().Meltdown {
		t.Fatal("setup: expected meltdown")
	}
	if updates != 5 {
		t.Errorf("every tick publishes exactly one update, got %d for 5 ticks", updates)
	}
}

func TestTripAndAlarmMessages(t *testing.T) {
	r := New(Overrides{"pressure_safe": 60})
	var trips, alarms []string
	r.On(TopicTrip, func(ev Event) { trips = append(trips, ev.Message) })
	r.On(TopicAlarm, func(ev Event) { alarms = append(alarms, ev.Message) })

	r.Tick(1) // pressure 66 >= 60

	if len(trips) != 1 || trips[0] != "SCRAM" {
		t.Errorf("expected one SCRAM trip, got %v", trips)
	}
	if len(alarms) != 1 || alarms[0] != "High pressure - SCRAM engaged" {
		t.Errorf("expected high pressure alarm, got %v", alarms)
	}
}

func TestHandlerOrder(t *testing.T) {
	r := New(nil)
	var order []int
	for i := 0; i < 4; i++ {
		i := i
		r.On(TopicUpdate, func(Event) { order = append(order, i) })
	}
	r.Tick(1)

	for i, v := range order {
		if v != i {
			t.Fatalf("handlers out of registration order: %v", order)
		}
	}
}

func TestHandlerPanicIsolation(t *testing.T) {
	r := New(nil)
	ran := false
	r.On(TopicUpdate, func(Event) { panic("observer bug") })
	r.On(TopicUpdate, func(Event) { ran = true })

	r.Tick(1) // must not panic

	if !ran {
		t.Error("a panicking handler must not starve later handlers")
	}
	if got := r.Snapshot().Time; got != 1 {
		t.Errorf("tick should complete despite handler panic, time %f", got)
	}
}

func TestHandlerSeesPostTickState(t *testing.T) {
	r := New(nil)
	var seen State
	r.On(TopicUpdate, func(ev Event) { seen = ev.State })
	r.Tick(1)

	if seen.Time != 1 {
		t.Errorf("update event should carry post-tick state, time %f", seen.Time)
	}
	if seen.Steam != 4000 {
		t.Errorf("update event should carry post-tick state, steam %f", seen.Steam)
	}
}

func TestHandlerSetterDefersToNextTick(t *testing.T) {
	r := New(nil)
	r.On(TopicUpdate, func(Event) { r.SetControlRods(0) })
	r.Tick(1)

	// The handler ran after the physics completed: this tick still saw rods
	// at 100 and produced zero power.
	if got := r.Snapshot().ReactorPower; got != 0 {
		t.Errorf("handler setter must not affect the current tick, power %f", got)
	}
	if got := r.Snapshot().ControlRods; got != 0 {
		t.Errorf("handler setter should persist for the next tick, rods %f", got)
	}
}
