// Package outbox holds launch links the bridge was asked to open until the
// device side drains them.
package outbox

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"handoff/internal/domain"
	"handoff/internal/ports"
)

// ErrFull is returned by Open when the outbox holds Capacity undrained links.
var ErrFull = errors.New("link outbox is full")

type item struct {
	record    domain.LaunchRecord
	expiresAt time.Time
}

// Outbox is a bounded FIFO of dispatched launch links with per-link expiry.
type Outbox struct {
	mu       sync.Mutex
	items    []item
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

var _ ports.LinkOpener = (*Outbox)(nil)

// New creates an outbox. A non-positive capacity means unbounded.
func New(ttl time.Duration, capacity int) *Outbox {
	return &Outbox{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Open queues link for the device.
func (o *Outbox) Open(link *url.URL, universalLinkOnly bool) error {
	if link == nil {
		return errors.New("nil link")
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cleanupLocked()
	if o.capacity > 0 && len(o.items) >= o.capacity {
		return ErrFull
	}
	now := o.now()
	o.items = append(o.items, item{
		record: domain.LaunchRecord{
			URL:               link.String(),
			UniversalLinkOnly: universalLinkOnly,
			DispatchedAt:      now,
		},
		expiresAt: now.Add(o.ttl),
	})
	return nil
}

// Drain returns the live links in dispatch order and empties the outbox.
func (o *Outbox) Drain() []domain.LaunchRecord {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cleanupLocked()
	out := make([]domain.LaunchRecord, 0, len(o.items))
	for _, it := range o.items {
		out = append(out, it.record)
	}
	o.items = nil
	return out
}

// Len returns the number of live links.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleanupLocked()
	return len(o.items)
}

// CleanupExpired drops links nobody drained in time.
func (o *Outbox) CleanupExpired() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleanupLocked()
}

func (o *Outbox) cleanupLocked() {
	now := o.now()
	kept := o.items[:0]
	for _, it := range o.items {
		if now.Before(it.expiresAt) {
			kept = append(kept, it)
		}
	}
	o.items = kept
}

// StartCleanupTicker runs CleanupExpired every interval until ctx is done.
func (o *Outbox) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.CleanupExpired()
			}
		}
	}()
}
