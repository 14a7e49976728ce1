package outbox

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestOutbox(t *testing.T) {
	t.Run("drain returns links in order and empties", func(t *testing.T) {
		o := New(time.Minute, 0)
		require.NoError(t, o.Open(mustURL(t, "https://a.example/1"), true))
		require.NoError(t, o.Open(mustURL(t, "weixin://app/wx1/sendreq/"), false))

		links := o.Drain()
		require.Len(t, links, 2)
		assert.Equal(t, "https://a.example/1", links[0].URL)
		assert.True(t, links[0].UniversalLinkOnly)
		assert.Equal(t, "weixin://app/wx1/sendreq/", links[1].URL)
		assert.False(t, links[1].UniversalLinkOnly)

		assert.Empty(t, o.Drain())
	})

	t.Run("expired links are dropped", func(t *testing.T) {
		now := time.Now()
		o := New(time.Minute, 0)
		o.now = func() time.Time { return now }

		require.NoError(t, o.Open(mustURL(t, "https://a.example/old"), true))
		now = now.Add(2 * time.Minute)
		require.NoError(t, o.Open(mustURL(t, "https://a.example/new"), true))

		links := o.Drain()
		require.Len(t, links, 1)
		assert.Equal(t, "https://a.example/new", links[0].URL)
	})

	t.Run("capacity", func(t *testing.T) {
		o := New(time.Minute, 1)
		require.NoError(t, o.Open(mustURL(t, "https://a.example/1"), true))
		assert.ErrorIs(t, o.Open(mustURL(t, "https://a.example/2"), true), ErrFull)
		assert.Equal(t, 1, o.Len())

		o.Drain()
		assert.NoError(t, o.Open(mustURL(t, "https://a.example/2"), true))
	})

	t.Run("nil link", func(t *testing.T) {
		assert.Error(t, New(time.Minute, 0).Open(nil, true))
	})

	t.Run("cleanup ticker", func(t *testing.T) {
		o := New(10*time.Millisecond, 0)
		require.NoError(t, o.Open(mustURL(t, "https://a.example/1"), true))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		o.StartCleanupTicker(ctx, 5*time.Millisecond)

		assert.Eventually(t, func() bool {
			o.mu.Lock()
			defer o.mu.Unlock()
			return len(o.items) == 0
		}, time.Second, 10*time.Millisecond)
	})
}
