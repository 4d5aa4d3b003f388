package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestCall_OpensAfterThreshold(t *testing.T) {
	var transitions []string
	cb := New(Config{
		FailureThreshold: 2,
		Timeout:          time.Minute,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	if cb.State() != StateClosed {
		t.Fatalf("State() = %v after 1 failure, want closed", cb.State())
	}
	_ = cb.Call(ctx, fail)
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v after 2 failures, want open", cb.State())
	}

	called := false
	err := cb.Call(ctx, func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Call() while open error = %v, want ErrOpen", err)
	}
	if called {
		t.Error("fn called while circuit open")
	}
	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("transitions = %v, want [closed->open]", transitions)
	}
}

func TestCall_HalfOpenRecovers(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: time.Second})
	now := time.Now()
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	now = now.Add(2 * time.Second)
	if err := cb.Call(ctx, succeed); err != nil {
		t.Fatalf("probe Call() error = %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("State() = %v after one probe, want half_open", cb.State())
	}
	_ = cb.Call(ctx, succeed)
	if cb.State() != StateClosed {
		t.Errorf("State() = %v after two probes, want closed", cb.State())
	}
}

func TestCall_HalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, Timeout: time.Second})
	now := time.Now()
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	now = now.Add(2 * time.Second)
	_ = cb.Call(ctx, fail)
	if cb.State() != StateOpen {
		t.Errorf("State() = %v after failed probe, want open", cb.State())
	}
}

func TestCall_IsFailureFilter(t *testing.T) {
	errIgnored := errors.New("not found")
	cb := New(Config{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return err != nil && !errors.Is(err, errIgnored) },
	})

	err := cb.Call(context.Background(), func() error { return errIgnored })
	if !errors.Is(err, errIgnored) {
		t.Errorf("Call() error = %v, want errIgnored passed through", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed for filtered error", cb.State())
	}
}

func TestCall_CanceledContext(t *testing.T) {
	cb := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cb.Call(ctx, succeed); !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want context.Canceled", err)
	}
}

func TestCall_ContextEndsDuringCall_NotCounted(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, Timeout: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())

	err := cb.Call(ctx, func() error {
		cancel()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want context.Canceled", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed after caller cancellation", cb.State())
	}
	if err := cb.Call(context.Background(), succeed); err != nil {
		t.Errorf("Call() after cancellation error = %v, want nil", err)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half_open",
		State(9):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
