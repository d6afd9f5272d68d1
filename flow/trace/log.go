package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LogSink implements Sink by writing structured output to a writer.
//
// Supports two modes:
//   - Text (default): human-readable, key=value pairs.
//   - JSON: one record per line (JSONL), for machine consumption.
//
// Example text output:
//
//	[fetch:OK:0.012s] runID=run-001 nodeID=fetch
//
// Example JSON output:
//
//	{"runID":"run-001","ts":1700000000.012,"nodeID":"fetch","label":"fetch:OK:0.012s","metadata":null}
type LogSink struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogSink returns a LogSink writing to writer. If writer is nil,
// os.Stdout is used. jsonMode selects JSONL output over text.
func NewLogSink(writer io.Writer, jsonMode bool) *LogSink {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogSink{writer: writer, jsonMode: jsonMode}
}

// Emit writes record to the configured writer in the configured mode.
func (l *LogSink) Emit(record Record) {
	if l.jsonMode {
		l.emitJSON(record)
		return
	}
	l.emitText(record)
}

func (l *LogSink) emitJSON(record Record) {
	data, err := json.Marshal(struct {
		RunID    string         `json:"runID"`
		TS       float64        `json:"ts"`
		NodeID   string         `json:"nodeID"`
		Label    string         `json:"label"`
		Metadata map[string]any `json:"metadata"`
	}{
		RunID:    record.RunID,
		TS:       record.Timestamp,
		NodeID:   record.NodeID,
		Label:    record.Label,
		Metadata: record.Metadata,
	})
	if err != nil {
		_, _ = fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal record: %v\"}\n", err)
		return
	}
	_, _ = fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogSink) emitText(record Record) {
	_, _ = fmt.Fprintf(l.writer, "[%s] runID=%s", record.Label, record.RunID)
	if record.NodeID != "" {
		_, _ = fmt.Fprintf(l.writer, " nodeID=%s", record.NodeID)
	}
	if len(record.Metadata) > 0 {
		if metaJSON, err := json.Marshal(record.Metadata); err == nil {
			_, _ = fmt.Fprintf(l.writer, " metadata=%s", metaJSON)
		}
	}
	_, _ = fmt.Fprint(l.writer, "\n")
}

// Flush is a no-op: LogSink writes synchronously with no internal buffer.
// Wrap writer in a bufio.Writer and flush that directly if buffering is
// desired.
func (l *LogSink) Flush(_ context.Context) error { return nil }
