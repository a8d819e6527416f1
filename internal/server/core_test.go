package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/san-kum/reactorsim/internal/protocol"
	"github.com/san-kum/reactorsim/internal/reactor"
)

func TestCoreBroadcastsStateFrames(t *testing.T) {
	r := reactor.New(nil)
	core := NewCore(r, time.Millisecond, nil)
	sub := core.Subscribe(64)
	defer core.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go core.Run(ctx)

	select {
	case b := <-sub:
		var msg protocol.StateMsg
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != protocol.TypeState {
			t.Errorf("expected STATE frame, got %s", msg.Type)
		}
		if msg.State.Time <= 0 {
			t.Errorf("state frame should carry post-tick time, got %f", msg.State.Time)
		}
	case <-time.After(time.Second):
		t.Fatal("no state frame within 1s")
	}
}

func TestCoreAppliesCommands(t *testing.T) {
	r := reactor.New(nil)
	core := NewCore(r, time.Millisecond, nil)
	sub := core.Subscribe(64)
	defer core.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go core.Run(ctx)

	ok := core.Submit(protocol.CmdMsg{
		Type:            protocol.TypeCmd,
		ProtocolVersion: protocol.Version,
		Action:          protocol.ActionSetGridLoad,
		Value:           1500,
	})
	if !ok {
		t.Fatal("submit should succeed with an empty queue")
	}

	deadline := time.After(time.Second)
	for {
		select {
		case b := <-sub:
			var msg protocol.StateMsg
			if err := json.Unmarshal(b, &msg); err != nil {
				continue
			}
			if msg.Type == protocol.TypeState && msg.State.GridLoad == 1500 {
				return
			}
		case <-deadline:
			t.Fatal("command never reflected in broadcast state")
		}
	}
}

func TestCoreEmitsEventFrames(t *testing.T) {
	r := reactor.New(reactor.Overrides{"pressure_safe": 60}) // trips on the first tick
	core := NewCore(r, time.Millisecond, nil)
	sub := core.Subscribe(64)
	defer core.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go core.Run(ctx)

	deadline := time.After(time.Second)
	for {
		select {
		case b := <-sub:
			base, err := protocol.DecodeBase(b)
			if err != nil {
				continue
			}
			if base.Type != protocol.TypeEvent {
				continue
			}
			var ev protocol.EventMsg
			if err := json.Unmarshal(b, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Topic == "trip" && ev.Message == "SCRAM" {
				return
			}
		case <-deadline:
			t.Fatal("no trip frame within 1s")
		}
	}
}

func TestWelcomeCarriesConfig(t *testing.T) {
	r := reactor.New(reactor.Overrides{"meltdown_temp": 777})
	core := NewCore(r, time.Millisecond, nil)

	w := core.Welcome()
	if w.Type != protocol.TypeWelcome || w.ProtocolVersion != protocol.Version {
		t.Errorf("bad welcome header: %+v", w)
	}
	if w.Config.MeltdownTemp != 777 {
		t.Errorf("welcome should carry the instance config, got %f", w.Config.MeltdownTemp)
	}
}
