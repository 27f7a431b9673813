// Package queue implements the resource-partitioned task queue: a fixed
// set of FIFO lanes, each declaring a resource vector, routed to by
// L1 distance. Grounded on the source's TaskQueue.resource_distance and
// TaskQueue.__delitem__, but replaces the 50ms-polling task_holder loop
// with per-lane condition-variable signaling.
package queue

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rakunlabs/algofab/pkg/task"
)

// Executor runs one task to completion (or failure) and records the
// result on it via Task.Complete/Task.Fail. t.Context() is cancelled when
// the task is cancelled; the lane does not advance until the Executor
// returns.
type Executor func(t *task.Task)

// LaneConfig declares one lane's fixed resource vector, e.g.
// {"cpu": 4, "gpu": 1}.
type LaneConfig struct {
	Name      string
	Resources map[string]float64
}

type lane struct {
	name      string
	resources map[string]float64

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*task.Task
	running *task.Task
}

// TaskQueue dispatches submitted tasks onto resource-partitioned lanes
// and runs each lane's head task serially through Executor, one
// concurrent runner goroutine per lane.
type TaskQueue struct {
	lanes []*lane
	run   Executor

	doneMu sync.Mutex
	done   map[string]*task.Task

	byID   sync.Map // task ID -> *lane, for pending/running tasks
}

// New builds a TaskQueue with one runner goroutine per configured lane.
// ctx governs the lifetime of all lane runner goroutines.
func New(ctx context.Context, lanes []LaneConfig, run Executor) (*TaskQueue, error) {
	if len(lanes) == 0 {
		return nil, fmt.Errorf("queue: at least one lane is required")
	}
	q := &TaskQueue{
		run:  run,
		done: make(map[string]*task.Task),
	}
	for _, lc := range lanes {
		l := &lane{name: lc.Name, resources: lc.Resources}
		l.cond = sync.NewCond(&l.mu)
		q.lanes = append(q.lanes, l)
		go q.runLane(ctx, l)
		go func(l *lane) {
			<-ctx.Done()
			l.mu.Lock()
			l.cond.Broadcast()
			l.mu.Unlock()
		}(l)
	}
	return q, nil
}

// resourceDistance computes the L1 routing distance of required against
// one lane's resource vector. A required quantity of -1 means "use
// whichever lane offers the most of this resource" (substituted with the
// max across all lanes for that resource name, mirroring
// resource_matrix[name].max() in the source). A lane offering zero of a
// resource the task genuinely needs (quantity > 0) is unreachable and
// scores +Inf.
func (q *TaskQueue) resourceDistance(required map[string]float64) []float64 {
	maxByResource := make(map[string]float64)
	for _, l := range q.lanes {
		for name, qty := range l.resources {
			if qty > maxByResource[name] {
				maxByResource[name] = qty
			}
		}
	}

	dist := make([]float64, len(q.lanes))
	for i, l := range q.lanes {
		var sum float64
		for name, qty := range required {
			want := qty
			if want == -1 {
				want = maxByResource[name]
			}
			have := l.resources[name]
			if have == 0 && want != 0 {
				sum = math.Inf(1)
				break
			}
			diff := want - have
			if diff < 0 {
				diff = -diff
			}
			sum += diff
		}
		dist[i] = sum
	}
	return dist
}

// selectLane returns the index of the lane with minimum resource
// distance, mirroring resource_distance(...).argmin().
func (q *TaskQueue) selectLane(required map[string]float64) (int, error) {
	dist := q.resourceDistance(required)
	best := -1
	for i, d := range dist {
		if math.IsInf(d, 1) {
			continue
		}
		if best == -1 || d < dist[best] {
			best = i
		}
	}
	if best == -1 {
		return 0, fmt.Errorf("queue: no lane can satisfy requested resources %v", required)
	}
	return best, nil
}

// Enqueue routes t onto the lane closest to its requested resources and
// appends it to that lane's pending FIFO.
func (q *TaskQueue) Enqueue(t *task.Task) error {
	idx, err := q.selectLane(t.Resources)
	if err != nil {
		return err
	}
	l := q.lanes[idx]

	t.MarkQueued()

	l.mu.Lock()
	l.pending = append(l.pending, t)
	q.byID.Store(t.ID, l)
	l.cond.Signal()
	l.mu.Unlock()

	return nil
}

// runLane is the per-lane dispatcher goroutine: it blocks on the lane's
// condition variable until a task is pending, then runs it to
// completion before picking up the next one. One runner per lane
// enforces the single-runner-per-lane invariant.
func (q *TaskQueue) runLane(ctx context.Context, l *lane) {
	for {
		l.mu.Lock()
		for len(l.pending) == 0 {
			if ctx.Err() != nil {
				l.mu.Unlock()
				return
			}
			l.cond.Wait()
		}
		if ctx.Err() != nil {
			l.mu.Unlock()
			return
		}

		t := l.pending[0]
		l.pending = l.pending[1:]
		l.running = t
		l.mu.Unlock()

		t.MarkRunning()
		q.run(t)

		q.doneMu.Lock()
		q.done[t.ID] = t
		q.doneMu.Unlock()

		l.mu.Lock()
		l.running = nil
		l.mu.Unlock()

		q.byID.Delete(t.ID)
	}
}

// PositionOf returns the 1-based position of a still-queued task within
// its lane's pending FIFO, mirroring TaskQueue.queue_where. It reports
// false for a task that is running, done, or unknown — queue_length only
// applies to the in-queue status.
func (q *TaskQueue) PositionOf(id string) (int, bool) {
	v, ok := q.byID.Load(id)
	if !ok {
		return 0, false
	}
	l := v.(*lane)
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.pending {
		if p.ID == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Lookup finds a task by ID across pending, running, and done tasks.
func (q *TaskQueue) Lookup(id string) (*task.Task, bool) {
	if v, ok := q.byID.Load(id); ok {
		l := v.(*lane)
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.running != nil && l.running.ID == id {
			return l.running, true
		}
		for _, p := range l.pending {
			if p.ID == id {
				return p, true
			}
		}
	}
	q.doneMu.Lock()
	defer q.doneMu.Unlock()
	if t, ok := q.done[id]; ok {
		return t, true
	}
	return nil, false
}

// Cancel cancels a task, removing it from its lane's pending FIFO if it
// hasn't started, or signaling its context if it's running. It returns
// an error if no task with that ID is known, mirroring
// TaskQueue.__delitem__'s LookupError.
func (q *TaskQueue) Cancel(id string) error {
	if v, ok := q.byID.Load(id); ok {
		l := v.(*lane)
		l.mu.Lock()
		if l.running != nil && l.running.ID == id {
			t := l.running
			l.mu.Unlock()
			t.Cancel()
			return nil
		}
		for i, p := range l.pending {
			if p.ID == id {
				l.pending = append(l.pending[:i], l.pending[i+1:]...)
				l.mu.Unlock()
				q.byID.Delete(id)
				p.Cancel()
				q.doneMu.Lock()
				q.done[id] = p
				q.doneMu.Unlock()
				return nil
			}
		}
		l.mu.Unlock()
	}

	q.doneMu.Lock()
	defer q.doneMu.Unlock()
	if _, ok := q.done[id]; ok {
		return fmt.Errorf("queue: task %q is already done", id)
	}
	return fmt.Errorf("queue: task %q not found", id)
}

// Evict removes and returns a done task, mirroring the read-time
// eviction build_task_response performs on finished tasks: a completed
// task's result can be fetched exactly once.
func (q *TaskQueue) Evict(id string) (*task.Task, bool) {
	q.doneMu.Lock()
	defer q.doneMu.Unlock()
	t, ok := q.done[id]
	if ok {
		delete(q.done, id)
	}
	return t, ok
}
