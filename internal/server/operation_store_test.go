package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/internal/domain"
)

func TestOperationStore(t *testing.T) {
	t.Run("CreateAndGetOperation", func(t *testing.T) {
		s := NewOperationStore()
		created := s.CreateOperation("op-1", domain.PlatformWechat, domain.OperationShare, domain.EndpointWechatFriend, time.Minute)

		got, err := s.GetOperation("op-1")
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Equal(t, domain.OperationPending, got.Status)
		assert.Equal(t, domain.EndpointWechatFriend, got.Endpoint)
		assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Second)
	})

	t.Run("GetNonExistentOperation", func(t *testing.T) {
		s := NewOperationStore()
		_, err := s.GetOperation("missing")
		assert.ErrorIs(t, err, ErrOperationNotFound)
	})

	t.Run("CompleteSuccess", func(t *testing.T) {
		s := NewOperationStore()
		s.CreateOperation("op-1", domain.PlatformWeibo, domain.OperationOauth, "", time.Minute)

		require.NoError(t, s.Complete("op-1", domain.Succeeded(map[string]string{domain.OauthAccessToken: "at"})))

		got, _ := s.GetOperation("op-1")
		assert.Equal(t, domain.OperationSucceeded, got.Status)
		assert.Equal(t, "at", got.Parameters[domain.OauthAccessToken])
		assert.Empty(t, got.Reason)
	})

	t.Run("CompleteFailure", func(t *testing.T) {
		s := NewOperationStore()
		s.CreateOperation("op-1", domain.PlatformWechat, domain.OperationShare, domain.EndpointWechatTimeline, time.Minute)

		require.NoError(t, s.Complete("op-1", domain.Failed(domain.ErrUserCancelled)))

		got, _ := s.GetOperation("op-1")
		assert.Equal(t, domain.OperationFailed, got.Status)
		assert.Equal(t, "user cancelled", got.Reason)

		assert.ErrorIs(t, s.Complete("missing", domain.Succeeded(nil)), ErrOperationNotFound)
	})

	t.Run("ListOldestFirst", func(t *testing.T) {
		s := NewOperationStore()
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		clock := base
		s.now = func() time.Time { return clock }

		s.CreateOperation("b", domain.PlatformWechat, domain.OperationShare, domain.EndpointWechatFriend, time.Hour)
		clock = base.Add(-time.Minute)
		s.CreateOperation("a", domain.PlatformWechat, domain.OperationOauth, "", time.Hour)
		clock = base
		s.CreateOperation("c", domain.PlatformWeibo, domain.OperationOauth, "", time.Hour)

		var ids []string
		for _, r := range s.List() {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		s := NewOperationStore()
		base := time.Now()
		clock := base
		s.now = func() time.Time { return clock }

		s.CreateOperation("short", domain.PlatformWechat, domain.OperationOauth, "", time.Second)
		s.CreateOperation("long", domain.PlatformWechat, domain.OperationOauth, "", time.Hour)

		clock = base.Add(time.Minute)
		assert.Equal(t, 1, s.CleanupExpired())

		_, err := s.GetOperation("short")
		assert.ErrorIs(t, err, ErrOperationNotFound)
		_, err = s.GetOperation("long")
		assert.NoError(t, err)
	})

	t.Run("StartCleanupTicker", func(t *testing.T) {
		s := NewOperationStore()
		s.CreateOperation("op-1", domain.PlatformWechat, domain.OperationOauth, "", time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s.StartCleanupTicker(ctx, 5*time.Millisecond)

		assert.Eventually(t, func() bool {
			_, err := s.GetOperation("op-1")
			return err != nil
		}, time.Second, 5*time.Millisecond)
	})
}
