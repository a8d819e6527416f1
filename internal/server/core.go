// Package server exposes one reactor over a websocket: snapshot frames out on
// every tick, schema-validated operator commands in. A single goroutine owns
// the reactor; clients only ever touch channels.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/reactorsim/internal/protocol"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Core runs the tick loop and fans frames out to subscribers.
type Core struct {
	r        *reactor.Reactor
	dt       float64
	interval time.Duration
	log      *slog.Logger

	cmds chan protocol.CmdMsg

	mu   sync.Mutex
	subs map[chan []byte]struct{}
	last reactor.State
	cfg  reactor.Config
}

// NewCore takes ownership of r: after this call, nothing else may tick it or
// call its setters directly.
func NewCore(r *reactor.Reactor, interval time.Duration, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Core{
		r:        r,
		dt:       r.Config().Dt,
		interval: interval,
		log:      logger,
		cmds:     make(chan protocol.CmdMsg, 64),
		subs:     make(map[chan []byte]struct{}),
		last:     r.Snapshot(),
		cfg:      r.Config(),
	}

	r.On(reactor.TopicUpdate, func(ev reactor.Event) {
		c.mu.Lock()
		c.last = ev.State
		c.mu.Unlock()
		c.broadcast(protocol.StateMsg{Type: protocol.TypeState, State: ev.State})
	})
	eventOut := func(ev reactor.Event) {
		c.broadcast(protocol.EventMsg{
			Type:    protocol.TypeEvent,
			Topic:   ev.Topic.String(),
			Message: ev.Message,
			State:   ev.State,
		})
	}
	r.On(reactor.TopicAlarm, eventOut)
	r.On(reactor.TopicTrip, eventOut)

	return c
}

// Run drives the reactor until ctx is done. Commands are applied between
// ticks, never during one.
func (c *Core) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.Info("core loop started", "dt", c.dt, "interval", c.interval)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("core loop stopped", "time", c.r.Snapshot().Time)
			return
		case cmd := <-c.cmds:
			c.apply(cmd)
		case <-ticker.C:
			c.r.Tick(c.dt)
		}
	}
}

func (c *Core) apply(cmd protocol.CmdMsg) {
	switch cmd.Action {
	case protocol.ActionSetControlRods:
		c.r.SetControlRods(cmd.Value)
	case protocol.ActionSetPumpPower:
		c.r.SetPumpPower(cmd.Value)
	case protocol.ActionSetTurbinePitch:
		c.r.SetTurbinePitch(cmd.Value)
	case protocol.ActionSetGeneratorLoad:
		c.r.SetGeneratorLoad(cmd.Value)
	case protocol.ActionSetGridLoad:
		c.r.SetGridLoad(cmd.Value)
	case protocol.ActionScram:
		c.r.Scram()
	case protocol.ActionResetTrip:
		c.r.ResetTrip()
	}
}

// Submit queues a validated command for the core loop. Returns false if the
// queue is full.
func (c *Core) Submit(cmd protocol.CmdMsg) bool {
	select {
	case c.cmds <- cmd:
		return true
	default:
		return false
	}
}

// Welcome builds the handshake reply for a new client from the last
// broadcast state; it never touches the reactor from outside the loop.
func (c *Core) Welcome() protocol.WelcomeMsg {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		Config:          c.cfg,
		State:           last,
	}
}

// Subscribe registers a frame channel. Slow subscribers lose frames rather
// than stalling the loop.
func (c *Core) Subscribe(buf int) chan []byte {
	ch := make(chan []byte, buf)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

func (c *Core) Unsubscribe(ch chan []byte) {
	c.mu.Lock()
	delete(c.subs, ch)
	c.mu.Unlock()
}

func (c *Core) broadcast(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("frame marshal failed", "err", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- b:
		default:
		}
	}
}
