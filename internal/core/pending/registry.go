package pending

import (
	"sync"

	"handoff/internal/domain"
)

type slot struct {
	done domain.Completion
	seq  uint64
}

// Registry holds at most one in-flight completion per operation kind.
// Registering a kind that is already occupied replaces the old completion,
// which is never invoked.
type Registry struct {
	mu    sync.Mutex
	slots map[domain.OperationKind]slot
	seq   uint64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		slots: make(map[domain.OperationKind]slot),
	}
}

// Register stores done as the current completion for kind.
// It reports whether an earlier completion was displaced.
func (r *Registry) Register(kind domain.OperationKind, done domain.Completion) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, displaced := r.slots[kind]
	r.seq++
	r.slots[kind] = slot{done: done, seq: r.seq}
	return displaced
}

// Resolve invokes and clears the completion for kind.
// An empty slot is a no-op and reports false.
func (r *Registry) Resolve(kind domain.OperationKind, outcome domain.Outcome) bool {
	r.mu.Lock()
	s, ok := r.slots[kind]
	if ok {
		delete(r.slots, kind)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	// Called outside the lock: completions may start a new request on the same handler.
	if s.done != nil {
		s.done(outcome)
	}
	return true
}

// ResolveLatest resolves whichever occupied slot was registered most recently.
// The pick and the removal happen under one lock.
func (r *Registry) ResolveLatest(outcome domain.Outcome) (domain.OperationKind, bool) {
	r.mu.Lock()
	var (
		latest domain.OperationKind
		picked slot
		found  bool
	)
	for kind, s := range r.slots {
		if !found || s.seq > picked.seq {
			latest, picked, found = kind, s, true
		}
	}
	if found {
		delete(r.slots, latest)
	}
	r.mu.Unlock()

	if !found {
		return "", false
	}
	if picked.done != nil {
		picked.done(outcome)
	}
	return latest, true
}

// Pending reports whether kind has a registered completion.
func (r *Registry) Pending(kind domain.OperationKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.slots[kind]
	return ok
}
