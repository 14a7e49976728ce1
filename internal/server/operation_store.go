package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"handoff/internal/domain"
)

// ErrOperationNotFound is returned for unknown or expired operation ids.
var ErrOperationNotFound = errors.New("operation not found")

type operation struct {
	record    domain.OperationRecord
	expiresAt time.Time
}

// OperationStore keeps the bridge's view of share and oauth requests until
// their TTL runs out.
type OperationStore struct {
	operations map[string]*operation
	mutex      sync.RWMutex
	now        func() time.Time
}

// NewOperationStore creates an empty store.
func NewOperationStore() *OperationStore {
	return &OperationStore{
		operations: make(map[string]*operation),
		now:        time.Now,
	}
}

// CreateOperation records a new pending operation.
func (s *OperationStore) CreateOperation(id string, platform domain.Platform, kind domain.OperationKind, endpoint domain.Endpoint, ttl time.Duration) domain.OperationRecord {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	record := domain.OperationRecord{
		ID:        id,
		Platform:  platform,
		Kind:      kind,
		Endpoint:  endpoint,
		Status:    domain.OperationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.operations[id] = &operation{record: record, expiresAt: now.Add(ttl)}
	return record
}

// Complete stores the outcome delivered for operation id.
func (s *OperationStore) Complete(id string, outcome domain.Outcome) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	op, exists := s.operations[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}

	if outcome.OK() {
		op.record.Status = domain.OperationSucceeded
		op.record.Parameters = outcome.Parameters
		op.record.Reason = ""
	} else {
		op.record.Status = domain.OperationFailed
		op.record.Reason = string(outcome.Reason())
	}
	op.record.UpdatedAt = s.now()
	return nil
}

// GetOperation returns a copy of operation id.
func (s *OperationStore) GetOperation(id string) (domain.OperationRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	op, exists := s.operations[id]
	if !exists {
		return domain.OperationRecord{}, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	return op.record, nil
}

// List returns all live operations, oldest first.
func (s *OperationStore) List() []domain.OperationRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]domain.OperationRecord, 0, len(s.operations))
	for _, op := range s.operations {
		out = append(out, op.record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// CleanupExpired drops operations past their TTL.
func (s *OperationStore) CleanupExpired() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	removed := 0
	for id, op := range s.operations {
		if now.After(op.expiresAt) {
			delete(s.operations, id)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker runs CleanupExpired every interval until ctx is done.
func (s *OperationStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}
