package flow

import (
	"sync"
	"testing"

	"github.com/dshills/agentflow-go/flow/trace"
)

func TestStateGetSet(t *testing.T) {
	s := NewState()
	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty state returned ok=true")
	}
	if got := s.GetOrDefault("missing", 42); got != 42 {
		t.Errorf("GetOrDefault = %v, want 42", got)
	}

	s.Set("key", "value")
	v, ok := s.Get("key")
	if !ok || v != "value" {
		t.Errorf("Get(\"key\") = %v, %v, want \"value\", true", v, ok)
	}
}

func TestStateWithData(t *testing.T) {
	seed := map[string]any{"a": 1}
	s := NewState(WithData(seed))
	seed["a"] = 2 // mutating the caller's map must not affect the State

	v, _ := s.Get("a")
	if v != 1 {
		t.Errorf("Get(\"a\") = %v, want 1 (State should copy seed data)", v)
	}
}

func TestStateUpdateAtomic(t *testing.T) {
	s := NewState(WithSynchronized())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("counter", func(cur any) any {
				n, _ := cur.(int)
				return n + 1
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get("counter")
	if got != 100 {
		t.Errorf("counter = %v, want 100 (Update must be race-free under synchronized mode)", got)
	}
}

func TestStateTraceIDAutoGenerated(t *testing.T) {
	a := NewState()
	b := NewState()
	if a.TraceID() == "" {
		t.Error("auto-generated trace ID is empty")
	}
	if a.TraceID() == b.TraceID() {
		t.Error("two States generated the same trace ID")
	}
}

func TestStateTraceIDExplicit(t *testing.T) {
	s := NewState(WithTraceID("run-001"))
	if got := s.TraceID(); got != "run-001" {
		t.Errorf("TraceID() = %q, want \"run-001\"", got)
	}
}

func TestStateLogAndRecords(t *testing.T) {
	s := NewState(WithTraceID("run-x"))
	s.Log("custom:event", map[string]any{"k": "v"})

	records := s.Records()
	if len(records) != 1 {
		t.Fatalf("len(Records()) = %d, want 1", len(records))
	}
	r := records[0]
	if r.RunID != "run-x" || r.Label != "custom:event" || r.Metadata["k"] != "v" {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestStateLogForwardsToSink(t *testing.T) {
	sink := trace.NewBufferedSink()
	s := NewState(WithTraceID("run-y"), WithSink(sink))

	s.Log("a", nil)
	s.Log("b", nil)

	history := sink.History("run-y")
	if len(history) != 2 {
		t.Fatalf("sink history len = %d, want 2", len(history))
	}
	if history[0].Label != "a" || history[1].Label != "b" {
		t.Errorf("unexpected sink history order: %+v", history)
	}
}

func TestStateRecordsIsSnapshot(t *testing.T) {
	s := NewState()
	s.Log("first", nil)

	snap := s.Records()
	s.Log("second", nil)

	if len(snap) != 1 {
		t.Errorf("earlier snapshot mutated; len = %d, want 1", len(snap))
	}
	if len(s.Records()) != 2 {
		t.Errorf("len(Records()) after second Log = %d, want 2", len(s.Records()))
	}
}
