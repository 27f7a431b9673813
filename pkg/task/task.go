// Package task implements the unit of work that flows through the
// queue: a single algorithm invocation from submission to completion,
// grounded on the source's Task class and generalized onto a
// context.Context for cooperative cancellation.
package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCancelled is recorded as a cancelled task's Err, so a cancelled task
// renders through the same done shape as a failed one, with an error
// message containing "cancelled".
var ErrCancelled = errors.New("cancelled")

// State is the lifecycle stage a Task occupies.
type State string

const (
	StateCreated   State = "created"
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

// Task is a single submitted algorithm invocation.
type Task struct {
	mu sync.Mutex

	ID          string
	AlgorithmID string
	AccessID    string
	Input       map[string]any
	Resources   map[string]float64

	state State

	createTime  time.Time
	queueTime   time.Time
	startTime   time.Time
	endTime     time.Time

	output map[string]any
	err    error

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Task in StateCreated, deriving a cancellable context from
// parent so the scheduler and HTTP cancel endpoint share one cancellation
// signal, mirroring registerRun's context.WithCancel pattern generalized
// from per-run tracking to per-task.
func New(parent context.Context, algorithmID, accessID string, input map[string]any, resources map[string]float64) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		ID:          uuid.NewString(),
		AlgorithmID: algorithmID,
		AccessID:    accessID,
		Input:       input,
		Resources:   resources,
		state:       StateCreated,
		createTime:  time.Now().UTC(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Context returns the task's cancellable context. Run implementations
// should observe ctx.Done() to stop cooperatively.
func (t *Task) Context() context.Context {
	return t.ctx
}

// MarkQueued transitions the task into StateQueued.
func (t *Task) MarkQueued() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateQueued
	t.queueTime = time.Now().UTC()
}

// MarkRunning transitions the task into StateRunning.
func (t *Task) MarkRunning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateRunning
	t.startTime = time.Now().UTC()
}

// Complete records a successful result and transitions into StateDone.
func (t *Task) Complete(output map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.output = output
	t.state = StateDone
	t.endTime = time.Now().UTC()
}

// Fail records a failure and transitions into StateDone. The task is
// still "done" — failure is carried in Err, not a distinct state — same
// as the source representing failure as `self.error` alongside
// `is_done=True`.
func (t *Task) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
	t.state = StateDone
	t.endTime = time.Now().UTC()
}

// Cancel transitions into StateCancelled and fires the task's context.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateDone || t.state == StateCancelled {
		return
	}
	t.state = StateCancelled
	t.err = ErrCancelled
	t.endTime = time.Now().UTC()
	t.cancel()
}

// Snapshot is an immutable, lock-free copy of a Task's externally
// visible fields, safe to read after the lock is released.
type Snapshot struct {
	ID          string
	AlgorithmID string
	AccessID    string
	State       State
	CreateTime  time.Time
	QueueTime   time.Time
	StartTime   time.Time
	EndTime     time.Time
	Output      map[string]any
	Err         error
}

// Snapshot returns a consistent point-in-time view of the task.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		ID:          t.ID,
		AlgorithmID: t.AlgorithmID,
		AccessID:    t.AccessID,
		State:       t.state,
		CreateTime:  t.createTime,
		QueueTime:   t.queueTime,
		StartTime:   t.startTime,
		EndTime:     t.endTime,
		Output:      t.output,
		Err:         t.err,
	}
}

// InProgress reports whether the task has started but not finished.
func (s Snapshot) InProgress() bool {
	return s.State == StateRunning
}

// IsDone reports whether the task has reached a terminal state.
func (s Snapshot) IsDone() bool {
	return s.State == StateDone || s.State == StateCancelled
}
