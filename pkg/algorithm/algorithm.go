// Package algorithm implements the registry of runnable algorithm
// entries, supporting both a declarative descriptor form and a
// reflection-driven decorated form, mirroring the teacher's Noder /
// NodeFactory / RegisterNodeType pattern generalized from workflow nodes
// to cacheable, resource-aware jobs.
package algorithm

import (
	"context"
	"fmt"
	"sync"

	"github.com/rakunlabs/algofab/pkg/param"
)

// HandlerFunc is the uniform shape every algorithm entry compiles down to,
// regardless of which registration route produced it. inputs has already
// been validated and defaulted against Inputs; resources carries the
// resource vector the scheduler granted the task.
type HandlerFunc func(ctx context.Context, inputs map[string]any, resources map[string]float64) (map[string]any, error)

// Algorithm is one registered, callable entry.
type Algorithm struct {
	ID           string
	Name         string
	Version      string
	Doc          string
	Ref          string
	Inputs       param.Set
	Outputs      param.Set
	CacheDisable bool
	Run          HandlerFunc
}

// Registry holds every algorithm entry known to the process, keyed by ID.
// Unlike the io type registry, a colliding ID here is rejected outright:
// each algorithm id must name exactly one callable entry.
type Registry struct {
	mu    sync.RWMutex
	order []string
	algos map[string]*Algorithm
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{algos: make(map[string]*Algorithm)}
}

// Register adds a to the registry. It fails if a.ID is empty, a.Run is
// nil, or a.ID is already registered.
func (r *Registry) Register(a Algorithm) error {
	if a.ID == "" {
		return fmt.Errorf("algorithm: id is required")
	}
	if a.Run == nil {
		return fmt.Errorf("algorithm %q: run function is required", a.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.algos[a.ID]; exists {
		return fmt.Errorf("algorithm %q: already registered", a.ID)
	}
	cp := a
	r.algos[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return nil
}

// Get returns the algorithm registered under id.
func (r *Registry) Get(id string) (*Algorithm, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.algos[id]
	return a, ok
}

// List returns a page of registered algorithms in registration order.
func (r *Registry) List(skip, limit int, full bool) ([]*Algorithm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if skip < 0 {
		skip = 0
	}
	if skip > len(r.order) {
		return nil, fmt.Errorf("skip %d exceeds registry size %d", skip, len(r.order))
	}

	ids := r.order[skip:]
	if !full {
		if limit <= 0 {
			limit = len(ids)
		}
		if limit < len(ids) {
			ids = ids[:limit]
		}
	}

	out := make([]*Algorithm, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.algos[id])
	}
	return out, nil
}

// Len returns the number of registered algorithms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
