package flow

import "github.com/dshills/agentflow-go/flow/trace"

// Option configures a Flow at construction time.
//
// Functional options keep NewFlow extensible without breaking existing
// call sites as configuration grows, the same pattern RegisterNode and
// NewState use for their own construction.
//
// Example:
//
//	f := flow.NewFlow(
//	    flow.WithRegistry(myRegistry),
//	    flow.WithMetrics(flow.NewMetrics(prometheus.DefaultRegisterer)),
//	)
type Option func(*Flow)

// WithRegistry binds the Flow to an explicit Registry instead of
// DefaultRegistry. Use this to isolate node sets between independently
// tested or independently configured flows.
func WithRegistry(registry *Registry) Option {
	return func(f *Flow) {
		f.registry = registry
	}
}

// WithMetrics attaches a Prometheus metrics collector. Without it, a Flow
// records nothing.
func WithMetrics(m *Metrics) Option {
	return func(f *Flow) {
		f.metrics = m
	}
}

// WithDefaultSink attaches a trace.Sink applied to any State passed to
// Run that does not already carry its own sink (via state.WithSink at
// construction). A State's own sink always takes precedence.
func WithDefaultSink(sink trace.Sink) Option {
	return func(f *Flow) {
		f.defaultSink = sink
	}
}
