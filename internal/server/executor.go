package server

import (
	"fmt"

	"github.com/rakunlabs/algofab/pkg/algorithm"
	"github.com/rakunlabs/algofab/pkg/cache"
	"github.com/rakunlabs/algofab/pkg/task"
)

// NewExecutor builds the queue.Executor that runs a task's algorithm,
// consulting the result cache before and after the call, mirroring the
// source's AlgorithmCachePool.cache decorator wrapping each algorithm
// invocation with a fetch-before/record-after pair. hashAlg is read
// through a pointer so an admin-triggered rotation picks up the next
// executed task without needing to rebuild the queue.
func NewExecutor(algos *algorithm.Registry, c cache.Cache, hashAlg *cache.HashAlg) func(t *task.Task) {
	return func(t *task.Task) {
		algo, ok := algos.Get(t.AlgorithmID)
		if !ok {
			t.Fail(fmt.Errorf("algorithm %q is no longer registered", t.AlgorithmID))
			return
		}

		var signature string
		if !algo.CacheDisable && c != nil {
			sig, err := cache.Signature(algo.ID, t.Input, *hashAlg)
			if err == nil {
				signature = sig
				if cached, hit, err := c.Fetch(t.Context(), algo.ID, sig); err == nil && hit {
					t.Complete(cached)
					return
				}
			}
		}

		output, err := algo.Run(t.Context(), t.Input, t.Resources)
		if t.Snapshot().State == task.StateCancelled {
			// Keep the cancellation as the task's outcome.
			return
		}
		if err != nil {
			t.Fail(err)
			return
		}

		if signature != "" {
			_ = c.Record(t.Context(), algo.ID, signature, output)
		}
		t.Complete(output)
	}
}
