package flow

import (
	"context"
	"testing"
	"time"
)

func TestRegisterNodeDefaults(t *testing.T) {
	registry := NewRegistry()
	node, err := RegisterNode(registry, "fetch", alwaysOK)
	if err != nil {
		t.Fatalf("RegisterNode failed: %v", err)
	}
	if node.Retries != 0 || node.Timeout != 0 || node.RaiseErrors {
		t.Errorf("unexpected defaults: %+v", node)
	}
	if got, ok := registry.Lookup("fetch"); !ok || got != node {
		t.Errorf("Lookup(\"fetch\") = %+v, %v, want the registered node", got, ok)
	}
}

func TestRegisterNodeOptions(t *testing.T) {
	registry := NewRegistry()
	node, err := RegisterNode(registry, "slow", alwaysOK,
		WithTimeout(50*time.Millisecond),
		WithRetries(2),
		WithRaiseErrors(true),
	)
	if err != nil {
		t.Fatalf("RegisterNode failed: %v", err)
	}
	if node.Timeout != 50*time.Millisecond || node.Retries != 2 || !node.RaiseErrors {
		t.Errorf("unexpected node config: %+v", node)
	}
}

func TestRegisterNodeRejectsInvalidConfig(t *testing.T) {
	registry := NewRegistry()

	if _, err := RegisterNode(registry, "nilfn", nil); err == nil {
		t.Error("expected error for nil fn")
	} else if fe, ok := err.(*Error); !ok || fe.Code != CodeInvalidConfig {
		t.Errorf("error = %v, want InvalidConfig", err)
	}

	if _, err := RegisterNode(registry, "badtimeout", alwaysOK, WithTimeout(0)); err == nil {
		t.Error("expected error for non-positive timeout")
	}

	if _, err := RegisterNode(registry, "badretries", alwaysOK, WithRetries(-1)); err == nil {
		t.Error("expected error for negative retries")
	}
}

func TestRegisterNodeLastWins(t *testing.T) {
	registry := NewRegistry()
	first, _ := RegisterNode(registry, "x", alwaysOK)
	second, _ := RegisterNode(registry, "x", func(ctx context.Context, s *State) (bool, error) { return false, nil })

	got, ok := registry.Lookup("x")
	if !ok {
		t.Fatal("expected node to be registered")
	}
	if got == first {
		t.Error("Lookup returned the first registration, want the last")
	}
	if got != second {
		t.Error("Lookup did not return the last registration")
	}
}

func TestRegistryNamesSortedForErrorMessages(t *testing.T) {
	registry := NewRegistry()
	for _, n := range []string{"zebra", "alpha", "mid"} {
		if _, err := RegisterNode(registry, n, alwaysOK); err != nil {
			t.Fatalf("RegisterNode(%q): %v", n, err)
		}
	}
	want := "alpha, mid, zebra"
	if got := registry.names(); got != want {
		t.Errorf("names() = %q, want %q", got, want)
	}
}
