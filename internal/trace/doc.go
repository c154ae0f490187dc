// Package trace records what the vine back end does while it emits a
// program, to diagnose slow or failing compilations.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	vine emit --trace=- --trace-level=detail program.vb
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes each event as it happens (file or stderr)
//   - RingTracer: keeps the most recent events for a dump after an
//     internal invariant failure
//   - MultiTracer: fans events out to several tracers
//
// # Scopes
//
//   - ScopeDriver: command-level operations (load, compile, write)
//   - ScopePass: whole-program passes (validate, emit, merge)
//   - ScopeUnit: one spec's emission
//   - ScopeNet: one emitted network
//
// LevelPhase records driver and pass events, LevelDetail adds units and
// LevelDebug adds every network.
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "emit", parentID)
//	defer span.End("")
package trace
