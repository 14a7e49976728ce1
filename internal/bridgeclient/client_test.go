package bridgeclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/internal/domain"
)

func TestClient(t *testing.T) {
	var lastBody []byte
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/platforms/wechat/share", func(w http.ResponseWriter, r *http.Request) {
		lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"operation_id": "op-1"})
	})
	mux.HandleFunc("POST /api/v1/platforms/weibo/oauth", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"operation_id": "op-2"})
	})
	mux.HandleFunc("POST /api/v1/platforms/qq/oauth", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown platform: qq", http.StatusNotFound)
	})
	mux.HandleFunc("POST /api/v1/callbacks", func(w http.ResponseWriter, r *http.Request) {
		lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/operations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.OperationRecord{{ID: "op-1", Status: domain.OperationPending}})
	})
	mux.HandleFunc("GET /api/v1/operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.OperationRecord{ID: "op-1", Status: domain.OperationFailed, Reason: "user cancelled"})
	})
	mux.HandleFunc("GET /api/v1/links", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.LaunchRecord{{URL: "weixin://app/wx1234/sendreq/"}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL+"/", time.Second)
	ctx := context.Background()

	t.Run("Share", func(t *testing.T) {
		id, err := c.Share(ctx, domain.PlatformWechat, domain.EndpointWechatFriend, domain.TextMessage{Text: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "op-1", id)
		assert.JSONEq(t, `{"endpoint":"wechat.friend","message":{"kind":"text","text":"hi"}}`, string(lastBody))
	})

	t.Run("Oauth", func(t *testing.T) {
		id, err := c.Oauth(ctx, domain.PlatformWeibo)
		require.NoError(t, err)
		assert.Equal(t, "op-2", id)

		_, err = c.Oauth(ctx, "qq")
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.ErrorContains(t, err, "404 unknown platform: qq")
	})

	t.Run("Callback", func(t *testing.T) {
		require.NoError(t, c.Callback(ctx, "wx1234://oauth?code=abc", false))
		assert.JSONEq(t, `{"url":"wx1234://oauth?code=abc","activity":false}`, string(lastBody))
	})

	t.Run("Operations", func(t *testing.T) {
		records, err := c.Operations(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)

		record, err := c.Operation(ctx, "op-1")
		require.NoError(t, err)
		assert.Equal(t, "user cancelled", record.Reason)

		_, err = c.Operation(ctx, "missing")
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("Wait", func(t *testing.T) {
		record, err := c.Wait(ctx, "op-1", time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, domain.OperationFailed, record.Status)
	})

	t.Run("Links", func(t *testing.T) {
		links, err := c.Links(ctx)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "weixin://app/wx1234/sendreq/", links[0].URL)
	})
}

func TestWaitHonoursContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.OperationRecord{ID: "op-1", Status: domain.OperationPending})
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(ts.URL, time.Second).Wait(ctx, "op-1", 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
