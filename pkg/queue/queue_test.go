package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rakunlabs/algofab/pkg/task"
)

func TestSelectLaneExactMatch(t *testing.T) {
	q := &TaskQueue{lanes: []*lane{
		{name: "small", resources: map[string]float64{"cpu": 1}},
		{name: "large", resources: map[string]float64{"cpu": 8}},
	}}

	idx, err := q.selectLane(map[string]float64{"cpu": 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected large lane (1), got %d", idx)
	}
}

func TestSelectLaneMaxWildcard(t *testing.T) {
	q := &TaskQueue{lanes: []*lane{
		{name: "small", resources: map[string]float64{"cpu": 1}},
		{name: "large", resources: map[string]float64{"cpu": 8}},
	}}

	idx, err := q.selectLane(map[string]float64{"cpu": -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected lane offering max cpu (1), got %d", idx)
	}
}

func TestSelectLaneInfeasible(t *testing.T) {
	q := &TaskQueue{lanes: []*lane{
		{name: "cpu-only", resources: map[string]float64{"cpu": 4}},
	}}

	if _, err := q.selectLane(map[string]float64{"gpu": 1}); err == nil {
		t.Fatalf("expected error when no lane offers the required resource")
	}
}

func TestEnqueueRunsAndEvicts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q, err := New(ctx, []LaneConfig{{Name: "default", Resources: map[string]float64{"cpu": 1}}}, func(tk *task.Task) {
		tk.Complete(map[string]any{"ok": true})
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}

	tk := task.New(ctx, "algo", "user", map[string]any{}, map[string]float64{"cpu": 1})
	if err := q.Enqueue(tk); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		if _, ok := q.Lookup(tk.ID); ok {
			snap := tk.Snapshot()
			if snap.IsDone() {
				break
			}
		}
		select {
		case <-deadline:
			t.Fatalf("task did not complete in time")
		case <-time.After(time.Millisecond):
		}
	}

	got, ok := q.Evict(tk.ID)
	if !ok {
		t.Fatalf("expected task to be evictable after completion")
	}
	if got.ID != tk.ID {
		t.Fatalf("unexpected task evicted: %+v", got)
	}

	if _, ok := q.Evict(tk.ID); ok {
		t.Fatalf("expected second eviction to fail, task already consumed")
	}
}

func TestCancelPendingTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	block := make(chan struct{})
	q, err := New(ctx, []LaneConfig{{Name: "default", Resources: map[string]float64{"cpu": 1}}}, func(tk *task.Task) {
		<-block
		tk.Complete(map[string]any{})
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	defer close(block)

	running := task.New(ctx, "algo", "user", map[string]any{}, map[string]float64{"cpu": 1})
	blocked := task.New(ctx, "algo", "user", map[string]any{}, map[string]float64{"cpu": 1})

	if err := q.Enqueue(running); err != nil {
		t.Fatalf("enqueue running: %v", err)
	}
	if err := q.Enqueue(blocked); err != nil {
		t.Fatalf("enqueue blocked: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if err := q.Cancel(blocked.ID); err != nil {
		t.Fatalf("cancel pending task: %v", err)
	}
	snap := blocked.Snapshot()
	if snap.State != task.StateCancelled {
		t.Fatalf("expected cancelled state, got %v", snap.State)
	}
	if snap.Err == nil {
		t.Fatalf("expected cancelled task to carry an error")
	}

	got, ok := q.Lookup(blocked.ID)
	if !ok || got.ID != blocked.ID {
		t.Fatalf("expected cancelled task to remain lookup-able from the done buffer")
	}
	if _, ok := q.Evict(blocked.ID); !ok {
		t.Fatalf("expected cancelled task to be evictable from the done buffer")
	}
}

func TestPositionOfQueuedTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	block := make(chan struct{})
	q, err := New(ctx, []LaneConfig{{Name: "default", Resources: map[string]float64{"cpu": 1}}}, func(tk *task.Task) {
		<-block
		tk.Complete(map[string]any{})
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	defer close(block)

	running := task.New(ctx, "algo", "user", map[string]any{}, map[string]float64{"cpu": 1})
	second := task.New(ctx, "algo", "user", map[string]any{}, map[string]float64{"cpu": 1})
	third := task.New(ctx, "algo", "user", map[string]any{}, map[string]float64{"cpu": 1})

	if err := q.Enqueue(running); err != nil {
		t.Fatalf("enqueue running: %v", err)
	}
	if err := q.Enqueue(second); err != nil {
		t.Fatalf("enqueue second: %v", err)
	}
	if err := q.Enqueue(third); err != nil {
		t.Fatalf("enqueue third: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if pos, ok := q.PositionOf(second.ID); !ok || pos != 1 {
		t.Fatalf("expected second task at position 1, got %d (ok=%v)", pos, ok)
	}
	if pos, ok := q.PositionOf(third.ID); !ok || pos != 2 {
		t.Fatalf("expected third task at position 2, got %d (ok=%v)", pos, ok)
	}
	if _, ok := q.PositionOf(running.ID); ok {
		t.Fatalf("expected running task to have no queue position")
	}
}

func TestCancelUnknownTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q, err := New(ctx, []LaneConfig{{Name: "default", Resources: map[string]float64{"cpu": 1}}}, func(tk *task.Task) {
		tk.Complete(map[string]any{})
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}

	if err := q.Cancel("does-not-exist"); err == nil {
		t.Fatalf("expected error cancelling unknown task")
	}
}
