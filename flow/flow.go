package flow

import (
	"context"

	"github.com/dshills/agentflow-go/flow/trace"
)

// Flow is an evaluator bound to a node registry, an optional metrics
// collector, and an optional default trace sink. It is the entry point
// for compiling and running DSL expressions against a State.
//
// A Flow is safe for concurrent use: Run may be called from multiple
// goroutines, each against its own State.
type Flow struct {
	registry    *Registry
	metrics     *Metrics
	defaultSink trace.Sink
	cache       *compileCache
}

// NewFlow constructs a Flow. Without WithRegistry, the Flow binds to
// DefaultRegistry.
func NewFlow(opts ...Option) *Flow {
	f := &Flow{
		registry: DefaultRegistry,
		cache:    newCompileCache(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run parses (from cache where possible), validates, and evaluates expr
// against state, driving node execution as it walks the expression tree.
// It returns the root evaluation's boolean result.
//
// Run returns an error for a malformed expression, an unknown node
// reference, a cycle detected at evaluation time, a node configured
// raiseErrors whose attempt failed with an error other than a timeout, or
// a cancellation of ctx
// propagated out of the evaluator as a FatalSignal.
func (f *Flow) Run(ctx context.Context, expr string, state *State) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &Error{
			Message: "context already cancelled",
			Code:    CodeFatalSignal,
			Cause:   err,
		}
	}

	compiledExpr := f.cache.get(expr, f.registry)
	if compiledExpr.err != nil {
		return false, compiledExpr.err
	}

	if f.defaultSink != nil {
		state.attachDefaultSink(f.defaultSink)
	}
	state.attachMetrics(f.metrics)

	ev := &evaluator{
		ctx:      ctx,
		tokens:   compiledExpr.tokens,
		registry: f.registry,
		state:    state,
		metrics:  f.metrics,
	}

	result, err := ev.eval(0, len(compiledExpr.tokens), nil)
	if err != nil {
		return false, err
	}
	return result.ok, nil
}
