package trace

import "context"

// NullSink discards every record. It suits flows that do not need
// observability, and has effectively zero overhead.
type NullSink struct{}

// NewNullSink returns a Sink that discards all records.
func NewNullSink() *NullSink { return &NullSink{} }

// Emit discards record.
func (n *NullSink) Emit(record Record) {}

// Flush is a no-op; NullSink buffers nothing.
func (n *NullSink) Flush(ctx context.Context) error { return nil }
