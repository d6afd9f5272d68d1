package trace

import "context"

// Sink receives trace records as they are appended to a flow's State.
//
// Sinks enable pluggable observability backends: structured logging,
// distributed tracing (OpenTelemetry), or ad hoc in-memory capture for
// tests. Implementations should be:
//   - Non-blocking: avoid slowing down node execution.
//   - Thread-safe: may be called concurrently from parallel branches.
//   - Resilient: a Sink must not panic; handle failures internally.
type Sink interface {
	// Emit forwards a single trace record to the configured backend.
	// Emit must not block evaluation and must not panic.
	Emit(record Record)

	// Flush ensures any buffered records have been delivered. Implementations
	// with no internal buffering may treat this as a no-op. Must be safe to
	// call multiple times.
	Flush(ctx context.Context) error
}
