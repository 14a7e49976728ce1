package pending

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/internal/domain"
)

func TestRegistry(t *testing.T) {
	t.Run("Resolve invokes and clears", func(t *testing.T) {
		r := NewRegistry()
		var got []domain.Outcome
		r.Register(domain.OperationShare, func(o domain.Outcome) { got = append(got, o) })

		require.True(t, r.Pending(domain.OperationShare))
		assert.True(t, r.Resolve(domain.OperationShare, domain.Succeeded(nil)))
		assert.False(t, r.Pending(domain.OperationShare))

		require.Len(t, got, 1)
		assert.True(t, got[0].OK())
	})

	t.Run("Resolve on empty slot is a no-op", func(t *testing.T) {
		r := NewRegistry()
		assert.False(t, r.Resolve(domain.OperationOauth, domain.Failed(domain.ErrUnknown)))
	})

	t.Run("duplicate callback is absorbed", func(t *testing.T) {
		r := NewRegistry()
		calls := 0
		r.Register(domain.OperationShare, func(domain.Outcome) { calls++ })

		r.Resolve(domain.OperationShare, domain.Succeeded(nil))
		r.Resolve(domain.OperationShare, domain.Succeeded(nil))

		assert.Equal(t, 1, calls)
	})

	t.Run("newer registration supersedes older one", func(t *testing.T) {
		r := NewRegistry()
		var aCalled, bCalled bool

		assert.False(t, r.Register(domain.OperationShare, func(domain.Outcome) { aCalled = true }))
		assert.True(t, r.Register(domain.OperationShare, func(domain.Outcome) { bCalled = true }))

		r.Resolve(domain.OperationShare, domain.Succeeded(nil))

		assert.True(t, bCalled)
		assert.False(t, aCalled)
	})

	t.Run("kinds are independent", func(t *testing.T) {
		r := NewRegistry()
		var share, oauth int
		r.Register(domain.OperationShare, func(domain.Outcome) { share++ })
		r.Register(domain.OperationOauth, func(domain.Outcome) { oauth++ })

		r.Resolve(domain.OperationOauth, domain.Failed(domain.ErrUserCancelled))

		assert.Equal(t, 0, share)
		assert.Equal(t, 1, oauth)
		assert.True(t, r.Pending(domain.OperationShare))
	})

	t.Run("ResolveLatest picks the most recent registration", func(t *testing.T) {
		r := NewRegistry()
		var got domain.OperationKind
		r.Register(domain.OperationOauth, func(domain.Outcome) { got = domain.OperationOauth })
		r.Register(domain.OperationShare, func(domain.Outcome) { got = domain.OperationShare })

		kind, ok := r.ResolveLatest(domain.Failed(domain.ErrUnknown))
		require.True(t, ok)
		assert.Equal(t, domain.OperationShare, kind)
		assert.Equal(t, domain.OperationShare, got)

		kind, ok = r.ResolveLatest(domain.Failed(domain.ErrUnknown))
		require.True(t, ok)
		assert.Equal(t, domain.OperationOauth, kind)

		_, ok = r.ResolveLatest(domain.Failed(domain.ErrUnknown))
		assert.False(t, ok)
	})

	t.Run("completion may register again", func(t *testing.T) {
		r := NewRegistry()
		r.Register(domain.OperationShare, func(domain.Outcome) {
			r.Register(domain.OperationShare, func(domain.Outcome) {})
		})

		r.Resolve(domain.OperationShare, domain.Succeeded(nil))
		assert.True(t, r.Pending(domain.OperationShare))
	})

	t.Run("ResolveLatest clears the slot before completing", func(t *testing.T) {
		r := NewRegistry()
		var pendingDuring bool
		r.Register(domain.OperationOauth, func(domain.Outcome) {
			pendingDuring = r.Pending(domain.OperationOauth)
			r.Register(domain.OperationOauth, func(domain.Outcome) {})
		})

		kind, ok := r.ResolveLatest(domain.Failed(domain.ErrUnknown))
		require.True(t, ok)
		assert.Equal(t, domain.OperationOauth, kind)
		assert.False(t, pendingDuring)
		assert.True(t, r.Pending(domain.OperationOauth))
	})

	t.Run("ResolveLatest races Register", func(t *testing.T) {
		r := NewRegistry()
		const n = 200
		var (
			mu      sync.Mutex
			invoked = make(map[int]int)
			wg      sync.WaitGroup
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				i := i
				r.Register(domain.OperationShare, func(domain.Outcome) {
					mu.Lock()
					invoked[i]++
					mu.Unlock()
				})
			}
		}()
		resolved := 0
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				if _, ok := r.ResolveLatest(domain.Failed(domain.ErrUnknown)); ok {
					resolved++
				}
			}
		}()
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		for i, count := range invoked {
			assert.Equal(t, 1, count, "completion %d", i)
		}
		assert.Equal(t, resolved, len(invoked))
	})

	t.Run("concurrent access", func(t *testing.T) {
		r := NewRegistry()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.Register(domain.OperationShare, func(domain.Outcome) {})
			}()
			go func() {
				defer wg.Done()
				r.Resolve(domain.OperationShare, domain.Succeeded(nil))
			}()
		}
		wg.Wait()
	})
}
