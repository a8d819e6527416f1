package protocol

import (
	"encoding/json"
	"testing"

	"github.com/san-kum/reactorsim/internal/reactor"
)

func TestValidateCmd(t *testing.T) {
	good := []string{
		`{"type":"CMD","protocol_version":"1.0","action":"set_control_rods","value":40}`,
		`{"type":"CMD","protocol_version":"1.0","action":"scram"}`,
		`{"type":"CMD","protocol_version":"1.0","action":"reset_trip"}`,
	}
	for _, raw := range good {
		if _, err := ValidateCmd([]byte(raw)); err != nil {
			t.Errorf("valid frame rejected: %s: %v", raw, err)
		}
	}

	bad := []string{
		`not json`,
		`{"type":"CMD","protocol_version":"1.0"}`,                                    // missing action
		`{"type":"CMD","protocol_version":"1.0","action":"self_destruct"}`,           // unknown action
		`{"type":"CMD","protocol_version":"1.0","action":"scram","extra":true}`,      // extra field
		`{"type":"HELLO","protocol_version":"1.0","action":"scram"}`,                 // wrong type
		`{"type":"CMD","protocol_version":"1.0","action":"set_grid_load","value":"x"}`, // non-numeric value
	}
	for _, raw := range bad {
		if _, err := ValidateCmd([]byte(raw)); err == nil {
			t.Errorf("invalid frame accepted: %s", raw)
		}
	}
}

func TestCmdDecodesValue(t *testing.T) {
	cmd, err := ValidateCmd([]byte(`{"type":"CMD","protocol_version":"1.0","action":"set_grid_load","value":1500}`))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Action != ActionSetGridLoad || cmd.Value != 1500 {
		t.Errorf("unexpected decode: %+v", cmd)
	}
}

func TestStateMsgShape(t *testing.T) {
	b, err := json.Marshal(StateMsg{Type: TypeState})
	if err != nil {
		t.Fatal(err)
	}
	base, err := DecodeBase(b)
	if err != nil {
		t.Fatal(err)
	}
	if base.Type != TypeState {
		t.Errorf("expected STATE, got %s", base.Type)
	}
}

func TestWelcomeConfigKeysAreSnakeCase(t *testing.T) {
	b, err := json.Marshal(WelcomeMsg{
		Type:   TypeWelcome,
		Config: reactor.DefaultConfig(),
		State:  reactor.State{},
	})
	if err != nil {
		t.Fatal(err)
	}
	var frame map[string]json.RawMessage
	if err := json.Unmarshal(b, &frame); err != nil {
		t.Fatal(err)
	}
	var cfg map[string]float64
	if err := json.Unmarshal(frame["config"], &cfg); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"core_mass", "turbine_max_rpm", "meltdown_temp"} {
		if _, ok := cfg[key]; !ok {
			t.Errorf("config frame missing %s: %s", key, frame["config"])
		}
	}
	if _, ok := cfg["CoreMass"]; ok {
		t.Error("config frame leaked Go field names")
	}
}
