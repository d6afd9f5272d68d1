package flow

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/agentflow-go/flow/trace"
)

// State is the mutable bag threaded through a single flow run: a
// string-keyed map of arbitrary values plus an append-only ordered trace
// log. Access is either unsynchronized, for single-goroutine use, or
// serialized behind a mutex for use across the goroutines the "&"
// operator spawns.
//
// A Get immediately following a Set in the same goroutine observes the
// written value. Under synchronized mode, concurrent Get/Set are
// serialized and linearizable. The trace log is append-only and, within a
// single goroutine, monotonically non-decreasing in timestamp.
type State struct {
	mu      *sync.Mutex // nil in unsynchronized mode
	data    map[string]any
	traceID string
	records []trace.Record
	sink    trace.Sink
	metrics *Metrics // attached by Flow.Run, nil otherwise
}

// StateOption configures a State at construction time.
type StateOption func(*State)

// WithData seeds the State with initial key/value pairs. The map is
// copied; later mutation of the argument does not affect the State.
func WithData(data map[string]any) StateOption {
	return func(s *State) {
		for k, v := range data {
			s.data[k] = v
		}
	}
}

// WithSynchronized enables mutex-guarded access, required whenever the
// State may be shared across the goroutines the "&" operator spawns.
func WithSynchronized() StateOption {
	return func(s *State) {
		s.mu = &sync.Mutex{}
	}
}

// WithTraceID overrides the auto-generated trace ID.
func WithTraceID(id string) StateOption {
	return func(s *State) {
		s.traceID = id
	}
}

// WithSink attaches a trace.Sink that receives every record as it is
// appended, in addition to the in-memory log.
func WithSink(sink trace.Sink) StateOption {
	return func(s *State) {
		s.sink = sink
	}
}

// NewState constructs a State. Without WithTraceID, the trace ID is
// derived from wall time and the object's own address, which is unique
// and stable for the process lifetime of this State value.
func NewState(opts ...StateOption) *State {
	s := &State{data: make(map[string]any)}
	for _, opt := range opts {
		opt(s)
	}
	if s.traceID == "" {
		s.traceID = fmt.Sprintf("run-%d-%p", time.Now().UnixNano(), s)
	}
	return s
}

// lock acquires the mutex if the State is synchronized; otherwise it is a
// no-op. unlock mirrors it.
func (s *State) lock() {
	if s.mu != nil {
		s.mu.Lock()
	}
}

func (s *State) unlock() {
	if s.mu != nil {
		s.mu.Unlock()
	}
}

// Get returns the value stored under key and whether it was present.
func (s *State) Get(key string) (any, bool) {
	s.lock()
	defer s.unlock()
	v, ok := s.data[key]
	return v, ok
}

// GetOrDefault returns the value stored under key, or def if absent.
func (s *State) GetOrDefault(key string, def any) any {
	s.lock()
	defer s.unlock()
	if v, ok := s.data[key]; ok {
		return v
	}
	return def
}

// Set stores value under key.
func (s *State) Set(key string, value any) {
	s.lock()
	defer s.unlock()
	s.data[key] = value
}

// Update atomically replaces the value under key with fn applied to its
// current value (nil if absent), under the same lock discipline as Get
// and Set. This lets callers implement counters and accumulators without
// a racy Get-then-Set pair in synchronized mode.
func (s *State) Update(key string, fn func(current any) any) {
	s.lock()
	defer s.unlock()
	s.data[key] = fn(s.data[key])
}

// TraceID returns the run's stable trace identifier.
func (s *State) TraceID() string {
	return s.traceID
}

// Log appends a caller-supplied trace record with the given label and
// optional metadata, forwarding it to the attached sink if any.
func (s *State) Log(label string, metadata map[string]any) {
	s.append(trace.Record{
		RunID:     s.traceID,
		Timestamp: nowSeconds(),
		Label:     label,
		Metadata:  metadata,
	})
}

// logNode appends an executor-generated record attributed to nodeID.
func (s *State) logNode(nodeID, label string, metadata map[string]any) {
	s.append(trace.Record{
		RunID:     s.traceID,
		Timestamp: nowSeconds(),
		NodeID:    nodeID,
		Label:     label,
		Metadata:  metadata,
	})
}

func (s *State) append(record trace.Record) {
	s.lock()
	s.records = append(s.records, record)
	sink := s.sink
	metrics := s.metrics
	s.unlock()

	if sink != nil {
		sink.Emit(record)
	}
	metrics.traceEmitted()
}

// attachDefaultSink installs sink if the State does not already carry
// one of its own. Called by Flow.Run with the Flow's WithDefaultSink
// value; a State constructed with state.WithSink always wins.
func (s *State) attachDefaultSink(sink trace.Sink) {
	s.lock()
	if s.sink == nil {
		s.sink = sink
	}
	s.unlock()
}

// attachMetrics wires a Metrics collector into the State so every
// appended record, whether executor-generated or from a caller's Log
// call, is counted. Called by Flow.Run; a nil metrics is valid and makes
// this a no-op for the lifetime of the run.
func (s *State) attachMetrics(m *Metrics) {
	s.lock()
	s.metrics = m
	s.unlock()
}

// Records returns a snapshot of the append-only trace log, in emission
// order.
func (s *State) Records() []trace.Record {
	s.lock()
	defer s.unlock()
	out := make([]trace.Record, len(s.records))
	copy(out, s.records)
	return out
}

// nowSeconds returns the current wall time as seconds since the Unix
// epoch, with sub-second precision, matching the trace record shape.
func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
