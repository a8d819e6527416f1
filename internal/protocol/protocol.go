// Package protocol defines the JSON frames spoken over the telemetry
// websocket and validates inbound command frames against an embedded schema.
package protocol

import (
	"encoding/json"

	"github.com/san-kum/reactorsim/internal/reactor"
)

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeState   = "STATE"
	TypeEvent   = "EVENT"
	TypeCmd     = "CMD"
)

// Command actions.
const (
	ActionSetControlRods   = "set_control_rods"
	ActionSetPumpPower     = "set_pump_power"
	ActionSetTurbinePitch  = "set_turbine_pitch"
	ActionSetGeneratorLoad = "set_generator_load"
	ActionSetGridLoad      = "set_grid_load"
	ActionScram            = "scram"
	ActionResetTrip        = "reset_trip"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	Config          reactor.Config `json:"config"`
	State           reactor.State  `json:"state"`
}

// StateMsg is broadcast after every tick.
type StateMsg struct {
	Type  string        `json:"type"`
	State reactor.State `json:"state"`
}

// EventMsg is broadcast for every alarm and trip.
type EventMsg struct {
	Type    string        `json:"type"`
	Topic   string        `json:"topic"`
	Message string        `json:"message"`
	State   reactor.State `json:"state"`
}

// CmdMsg is an operator command. Value is ignored for scram and reset_trip.
type CmdMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Action          string  `json:"action"`
	Value           float64 `json:"value,omitempty"`
}
