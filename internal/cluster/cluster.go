// Package cluster coordinates the admin cache-rotation action across
// replicas using distributed locking, grounded on the teacher's
// RotateEncryptionKey transactional pattern generalized from a single
// Postgres transaction to a multi-replica lock since a hash-algorithm
// rotation must be agreed by every process sharing one cache store.
package cluster

import (
	"context"
	"fmt"

	"github.com/rakunlabs/alan"
)

// Coordinator wraps a distributed lock guarding cache-rotation actions.
type Coordinator struct {
	locker alan.Locker
}

// New builds a Coordinator over an already-configured alan.Locker.
func New(locker alan.Locker) *Coordinator {
	return &Coordinator{locker: locker}
}

// WithRotationLock runs fn while holding the cluster-wide rotation lock,
// so two replicas can never rotate the hash algorithm concurrently and
// disagree about which one is active.
func (c *Coordinator) WithRotationLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.locker == nil {
		return fn(ctx)
	}

	lock, err := c.locker.Lock(ctx, "algofab:cache-rotation")
	if err != nil {
		return fmt.Errorf("cluster: acquire rotation lock: %w", err)
	}
	defer lock.Unlock(ctx)

	return fn(ctx)
}
