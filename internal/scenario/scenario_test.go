package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/reactorsim/internal/reactor"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drill.yaml")
	text := `name: drill
description: scram and recover
dt: 1
duration: 30
steps:
  - at: 0
    set: {control_rods: 40, pump_power: 80}
  - at: 10
    scram: true
  - at: 20
    reset_trip: true
`
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "drill" {
		t.Errorf("expected name drill, got %s", sc.Name)
	}
	if len(sc.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(sc.Steps))
	}
	if sc.Steps[0].Set["control_rods"] != 40 {
		t.Errorf("expected rods 40 in first step, got %f", sc.Steps[0].Set["control_rods"])
	}
	if !sc.Steps[1].Scram {
		t.Error("expected scram at step 2")
	}
}

func TestRunAppliesSteps(t *testing.T) {
	sc := &Scenario{
		Name:     "drill",
		Dt:       1,
		Duration: 30,
		Steps: []Step{
			{At: 0, Set: map[string]float64{"control_rods": 40}},
			{At: 10, Scram: true},
		},
	}

	result, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.States) != 30 {
		t.Fatalf("expected 30 recorded states, got %d", len(result.States))
	}
	if result.States[0].ControlRods != 40 {
		t.Errorf("first step should set rods before tick 1, got %f", result.States[0].ControlRods)
	}
	if !result.Final.Scrammed {
		t.Error("expected final state scrammed")
	}
	if result.Final.ControlRods != 100 {
		t.Errorf("scram step should slam rods in, got %f", result.Final.ControlRods)
	}

	found := false
	for _, ev := range result.Events {
		if ev.Topic == reactor.TopicTrip && ev.Message == "SCRAM" {
			found = true
		}
	}
	if !found {
		t.Error("expected a recorded SCRAM trip event")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if _, err := Run(context.Background(), &Scenario{Name: "x", Duration: 0}); err == nil {
		t.Error("expected error for zero duration")
	}

	sc := &Scenario{
		Name:     "x",
		Duration: 10,
		Steps:    []Step{{At: 0, Set: map[string]float64{"warp_drive": 9}}},
	}
	if _, err := Run(context.Background(), sc); err == nil {
		t.Error("expected error for unknown control input")
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := &Scenario{Name: "x", Dt: 1, Duration: 1000}
	_, err := Run(ctx, sc)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
