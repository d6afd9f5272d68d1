package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExecuteSuccess(t *testing.T) {
	node := &Node{Name: "fetch", Fn: alwaysOK}
	state := NewState(WithTraceID("run"))

	ok, err := execute(context.Background(), node, state, nil)
	if err != nil || !ok {
		t.Fatalf("execute = %v, %v, want true, nil", ok, err)
	}

	records := state.Records()
	if len(records) != 1 || !strings.HasPrefix(records[0].Label, "fetch:OK:") {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestExecuteRetriesThenFails(t *testing.T) {
	node := &Node{
		Name: "flaky",
		Fn: func(ctx context.Context, s *State) (bool, error) {
			return false, errors.New("boom")
		},
		Retries: 2,
	}
	state := NewState(WithTraceID("run"))

	ok, err := execute(context.Background(), node, state, nil)
	if err != nil || ok {
		t.Fatalf("execute = %v, %v, want false, nil", ok, err)
	}

	records := state.Records()
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3 (initial attempt + 2 retries)", len(records))
	}
	for _, r := range records {
		if !strings.Contains(r.Label, "ERR(error)") {
			t.Errorf("record label = %q, want an ERR(error) label", r.Label)
		}
	}
}

func TestExecuteRaiseErrorsAborts(t *testing.T) {
	node := &Node{
		Name: "strict",
		Fn: func(ctx context.Context, s *State) (bool, error) {
			return false, errors.New("boom")
		},
		Retries:     3,
		RaiseErrors: true,
	}
	state := NewState(WithTraceID("run"))

	_, err := execute(context.Background(), node, state, nil)
	if err == nil {
		t.Fatal("expected error from raiseErrors node")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Code != CodeFatalSignal {
		t.Errorf("error = %v, want FatalSignal", err)
	}

	// Only the single failed attempt should have run; later attempts are
	// skipped once the failure is surfaced.
	if len(state.Records()) != 1 {
		t.Errorf("len(records) = %d, want 1", len(state.Records()))
	}
}

func TestExecuteTimeout(t *testing.T) {
	node := &Node{
		Name: "slow",
		Fn: func(ctx context.Context, s *State) (bool, error) {
			select {
			case <-time.After(time.Second):
				return true, nil
			case <-ctx.Done():
				return false, ctx.Err()
			}
		},
		Timeout: 20 * time.Millisecond,
		Retries: 2,
	}
	state := NewState(WithTraceID("run"))

	start := time.Now()
	ok, err := execute(context.Background(), node, state, nil)
	elapsed := time.Since(start)

	if err != nil || ok {
		t.Fatalf("execute = %v, %v, want false, nil", ok, err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("elapsed = %v, want well under the 1s node sleep (timeouts should cut attempts short)", elapsed)
	}

	records := state.Records()
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for _, r := range records {
		if !strings.Contains(r.Label, ":TIMEOUT:") {
			t.Errorf("record label = %q, want a TIMEOUT label", r.Label)
		}
	}
}

func TestExecuteParentCancellationIsFatal(t *testing.T) {
	node := &Node{Name: "x", Fn: alwaysOK, Retries: 5}
	state := NewState(WithTraceID("run"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(ctx, node, state, nil)
	if err == nil {
		t.Fatal("expected FatalSignal for a pre-cancelled context")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Code != CodeFatalSignal {
		t.Errorf("error = %v, want FatalSignal", err)
	}
	if len(state.Records()) != 0 {
		t.Errorf("len(records) = %d, want 0 (no attempt should consume a record)", len(state.Records()))
	}
}
