package flow

import (
	"context"
	"time"
)

// NodeFunc is the signature every registered node body must satisfy: it
// receives the caller's context and the shared State, and returns a
// success flag plus an error for unexpected failures.
type NodeFunc func(ctx context.Context, state *State) (bool, error)

// Node is an immutable record describing one named unit of work: its
// function body, an optional timeout, a bounded retry count, and whether
// a failed attempt (other than a timeout) should abort the run at once
// instead of being absorbed.
//
// Nodes are constructed by RegisterNode and never mutated afterward.
type Node struct {
	Name        string
	Fn          NodeFunc
	Timeout     time.Duration
	Retries     int
	RaiseErrors bool
}
