// Package automation runs cron-triggered resubmission of algorithm
// entries, generalized from the teacher's workflow.Scheduler
// (internal/service/workflow/scheduler.go) cron_trigger handling, itself
// a feature the distilled spec dropped but the original source's
// broader automation surface supports.
package automation

import (
	"context"
	"fmt"
	"sync"

	"github.com/worldline-go/hardloop"

	"github.com/rakunlabs/algofab/pkg/algorithm"
	"github.com/rakunlabs/algofab/pkg/queue"
	"github.com/rakunlabs/algofab/pkg/task"
)

// Trigger binds a cron schedule to a fixed algorithm invocation,
// resubmitted on every tick as a new task owned by accessID.
type Trigger struct {
	AlgorithmID string
	AccessID    string
	Input       map[string]any
	Resources   map[string]float64
	Schedule    string // standard 5-field cron expression
}

// Scheduler owns the set of running cron triggers, mirroring
// workflow.Scheduler's Start/Reload/Stop lifecycle but driving task
// submission instead of workflow runs.
type Scheduler struct {
	mu      sync.Mutex
	cron    *hardloop.Cron
	queue   *queue.TaskQueue
	algos   *algorithm.Registry
	ctx     context.Context
	cancel  context.CancelFunc
}

// New builds a Scheduler bound to q and algos.
func New(q *queue.TaskQueue, algos *algorithm.Registry) *Scheduler {
	return &Scheduler{queue: q, algos: algos, cron: hardloop.NewCron()}
}

// Start registers every trigger's cron job and begins running it.
func (s *Scheduler) Start(ctx context.Context, triggers []Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.cancel = cancel

	for _, trg := range triggers {
		trg := trg
		if _, ok := s.algos.Get(trg.AlgorithmID); !ok {
			cancel()
			return fmt.Errorf("automation: unknown algorithm %q for trigger", trg.AlgorithmID)
		}
		if err := s.cron.AddFunc(trg.Schedule, func() {
			s.fire(trg)
		}); err != nil {
			cancel()
			return fmt.Errorf("automation: schedule %q: %w", trg.Schedule, err)
		}
	}

	s.cron.Start(runCtx)
	return nil
}

func (s *Scheduler) fire(trg Trigger) {
	t := task.New(s.ctx, trg.AlgorithmID, trg.AccessID, trg.Input, trg.Resources)
	_ = s.queue.Enqueue(t)
}

// Stop halts every scheduled job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cron.Stop()
}
