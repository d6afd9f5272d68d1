package trace

import (
	"context"
	"strings"
	"sync"
)

// BufferedSink implements Sink by storing records in memory, grouped by run
// ID. It is useful for tests, debugging, and for building the exported
// Bundle wire shape without a separate persistence layer.
//
// Safe for concurrent use.
type BufferedSink struct {
	mu      sync.RWMutex
	records map[string][]Record // runID -> records
}

// NewBufferedSink returns an empty BufferedSink.
func NewBufferedSink() *BufferedSink {
	return &BufferedSink{records: make(map[string][]Record)}
}

// Emit appends record to the buffer for its RunID.
func (b *BufferedSink) Emit(record Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[record.RunID] = append(b.records[record.RunID], record)
}

// Flush is a no-op; BufferedSink holds everything in memory already.
func (b *BufferedSink) Flush(ctx context.Context) error { return nil }

// History returns a copy of the records captured for runID, in emission
// order. Returns an empty (non-nil) slice if the run has no records.
func (b *BufferedSink) History(runID string) []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	recs := b.records[runID]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out
}

// Filter narrows History by node ID and/or a label substring match. An
// empty field is treated as "no constraint on this field".
type Filter struct {
	NodeID string
	Label  string
}

// HistoryWithFilter returns the records for runID matching filter, in
// emission order.
func (b *BufferedSink) HistoryWithFilter(runID string, filter Filter) []Record {
	all := b.History(runID)
	if filter.NodeID == "" && filter.Label == "" {
		return all
	}
	out := make([]Record, 0, len(all))
	for _, r := range all {
		if filter.NodeID != "" && r.NodeID != filter.NodeID {
			continue
		}
		if filter.Label != "" && !strings.Contains(r.Label, filter.Label) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Clear removes buffered records. An empty runID clears every run.
func (b *BufferedSink) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.records = make(map[string][]Record)
		return
	}
	delete(b.records, runID)
}
