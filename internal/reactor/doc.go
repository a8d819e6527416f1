// Package reactor implements the discrete-time reactor core: a deterministic
// physics tick over a single state vector, safety interlocks (scram, terminal
// meltdown), synchronous fixed-topic event publication, and a flat key=value
// snapshot codec.
//
//   - [Config]: immutable tunables, built from [DefaultConfig] plus [Overrides]
//   - [State]: the simulation state vector; [Reactor.Snapshot] copies it
//   - [Reactor.Tick]: one physics step; publishes exactly one update event
//   - [Reactor.On]: subscribe to update, alarm, or trip events
//
// # Example
//
//	r := reactor.New(nil)
//	r.SetControlRods(40)
//	r.SetGeneratorLoad(60)
//	r.RunFor(600, 0)
//	fmt.Println(r.Snapshot().CoreTemp)
//
// # Thread Safety
//
// Reactor instances are NOT thread-safe. One goroutine owns an instance;
// event handlers run synchronously inside the tick that fires them.
package reactor
