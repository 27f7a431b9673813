package task

import (
	"context"
	"errors"
	"testing"
)

func TestLifecycleTransitions(t *testing.T) {
	tk := New(context.Background(), "algo", "user", map[string]any{}, nil)

	snap := tk.Snapshot()
	if snap.State != StateCreated {
		t.Fatalf("expected created state, got %v", snap.State)
	}

	tk.MarkQueued()
	if tk.Snapshot().State != StateQueued {
		t.Fatalf("expected queued state")
	}

	tk.MarkRunning()
	snap = tk.Snapshot()
	if !snap.InProgress() {
		t.Fatalf("expected in-progress snapshot")
	}

	tk.Complete(map[string]any{"x": 1.0})
	snap = tk.Snapshot()
	if !snap.IsDone() || snap.Err != nil {
		t.Fatalf("expected done snapshot with no error, got %+v", snap)
	}
	if snap.Output["x"] != 1.0 {
		t.Fatalf("unexpected output: %v", snap.Output)
	}
}

func TestFailSetsErrAndDone(t *testing.T) {
	tk := New(context.Background(), "algo", "user", map[string]any{}, nil)
	tk.MarkQueued()
	tk.MarkRunning()

	wantErr := errors.New("boom")
	tk.Fail(wantErr)

	snap := tk.Snapshot()
	if !snap.IsDone() {
		t.Fatalf("expected done state after failure")
	}
	if snap.Err != wantErr {
		t.Fatalf("expected recorded error, got %v", snap.Err)
	}
}

func TestCancelFiresContext(t *testing.T) {
	tk := New(context.Background(), "algo", "user", map[string]any{}, nil)
	tk.Cancel()

	if tk.Snapshot().State != StateCancelled {
		t.Fatalf("expected cancelled state")
	}
	select {
	case <-tk.Context().Done():
	default:
		t.Fatalf("expected task context to be cancelled")
	}
}

func TestCancelAfterDoneIsNoop(t *testing.T) {
	tk := New(context.Background(), "algo", "user", map[string]any{}, nil)
	tk.Complete(map[string]any{})
	tk.Cancel()

	if tk.Snapshot().State != StateDone {
		t.Fatalf("expected cancel after completion to be a no-op, got %v", tk.Snapshot().State)
	}
}
