package flow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// execute runs node against state under the per-node envelope: up to
// node.Retries+1 attempts, each optionally raced against node.Timeout,
// with a trace record emitted after every attempt. A parent-context
// cancellation aborts immediately without consuming an attempt and is
// surfaced as a FatalSignal.
//
// Retries do not implement backoff: each attempt fires immediately after
// the previous one fails. The <N> loop operator is where a caller places
// delay or corrective logic between attempts at the expression level.
func execute(ctx context.Context, node *Node, state *State, metrics *Metrics) (bool, error) {
	for attempt := 0; attempt <= node.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, &Error{
				Message: "context cancelled before invoking node \"" + node.Name + "\"",
				Code:    CodeFatalSignal,
				Cause:   err,
			}
		}

		metrics.nodeStarted()
		ok, kind, dur, err := attemptOnce(ctx, node, state)

		if kind == "cancelled" {
			if metrics != nil {
				metrics.inflightNodes.Dec()
			}
			return false, &Error{
				Message: "context cancelled while invoking node \"" + node.Name + "\"",
				Code:    CodeFatalSignal,
				Cause:   err,
			}
		}

		if kind == "" {
			state.logNode(node.Name, label(node.Name, "OK", dur), nil)
			metrics.nodeFinished(node.Name, "ok", dur)
			return ok, nil
		}

		nodeErr := &NodeError{
			Message: err.Error(),
			Kind:    kind,
			NodeID:  node.Name,
			Cause:   err,
		}

		switch kind {
		case "timeout":
			state.logNode(node.Name, label(node.Name, "TIMEOUT", dur), nil)
			metrics.nodeFinished(node.Name, "timeout", dur)

		default:
			state.logNode(node.Name, label(node.Name, "ERR("+kind+")", dur), nil)
			metrics.nodeFinished(node.Name, "err", dur)
		}

		if node.RaiseErrors && kind != "timeout" {
			return false, &Error{
				Message: "node \"" + node.Name + "\" failed: " + nodeErr.Error(),
				Code:    CodeFatalSignal,
				Cause:   nodeErr,
			}
		}

		if attempt < node.Retries {
			metrics.retried(node.Name, kind)
		}
	}
	return false, nil
}

// attemptOnce runs node.Fn exactly once, racing it against node.Timeout
// if set. kind is "" on success, "timeout" on deadline, or a short
// classifier of the returned error otherwise.
func attemptOnce(ctx context.Context, node *Node, state *State) (ok bool, kind string, seconds float64, err error) {
	start := time.Now()

	runCtx := ctx
	var cancel context.CancelFunc
	if node.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, node.Timeout)
		defer cancel()
	}

	type outcome struct {
		ok  bool
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{ok: false, err: fmt.Errorf("panic: %v", r)}
			}
		}()
		ok, err := node.Fn(runCtx, state)
		done <- outcome{ok: ok, err: err}
	}()

	select {
	case o := <-done:
		seconds = time.Since(start).Seconds()
		if o.err == nil {
			return o.ok, "", seconds, nil
		}
		return false, classify(o.err), seconds, o.err
	case <-runCtx.Done():
		seconds = time.Since(start).Seconds()
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return false, "timeout", seconds, runCtx.Err()
		}
		return false, classify(runCtx.Err()), seconds, runCtx.Err()
	}
}

// classify derives a short, stable failure kind from err for use in trace
// labels such as "name:ERR(error):0.010s": "cancelled" for
// context.Canceled, "timeout" for context.DeadlineExceeded, and "error"
// for everything else.
func classify(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// label formats the trace label for a node attempt as
// "name:STATUS:<dur>s", the duration in seconds with millisecond precision.
func label(name, status string, seconds float64) string {
	return fmt.Sprintf("%s:%s:%.3fs", name, status, seconds)
}
