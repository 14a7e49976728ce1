package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"handoff/internal/domain"
)

// mockHandler is a mock for ports.PlatformHandler.
type mockHandler struct {
	mock.Mock
	platform domain.Platform
}

func (m *mockHandler) Share(message domain.Message, endpoint domain.Endpoint, done domain.Completion) {
	m.Called(message, endpoint)
	done(domain.Succeeded(nil))
}

func (m *mockHandler) Oauth(done domain.Completion) {
	args := m.Called()
	done(domain.Succeeded(map[string]string{domain.OauthCode: args.String(0)}))
}

func (m *mockHandler) Owns(event domain.CallbackEvent) bool {
	return m.Called(event).Bool(0)
}

func (m *mockHandler) HandleCallback(event domain.CallbackEvent) {
	m.Called(event)
}

func (m *mockHandler) Platform() domain.Platform { return m.platform }

func (m *mockHandler) Endpoints() []domain.Endpoint { return nil }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandoffServiceRegister(t *testing.T) {
	wechat := &mockHandler{platform: domain.PlatformWechat}
	svc, err := NewHandoffService(newTestLogger(), wechat)
	require.NoError(t, err)

	err = svc.Register(&mockHandler{platform: domain.PlatformWechat})
	assert.ErrorIs(t, err, ErrDuplicatePlatform)

	require.NoError(t, svc.Register(&mockHandler{platform: domain.PlatformWeibo}))
	assert.Equal(t, []domain.Platform{domain.PlatformWechat, domain.PlatformWeibo}, svc.Platforms())
}

func TestHandoffServiceDelegates(t *testing.T) {
	wechat := &mockHandler{platform: domain.PlatformWechat}
	svc, err := NewHandoffService(newTestLogger(), wechat)
	require.NoError(t, err)

	msg := domain.TextMessage{Text: "hi"}
	wechat.On("Share", msg, domain.EndpointWechatFriend).Once()
	wechat.On("Oauth").Return("code-1").Once()

	var outcomes []domain.Outcome
	done := func(o domain.Outcome) { outcomes = append(outcomes, o) }

	require.NoError(t, svc.Share(domain.PlatformWechat, msg, domain.EndpointWechatFriend, done))
	require.NoError(t, svc.Oauth(domain.PlatformWechat, done))

	require.Len(t, outcomes, 2)
	assert.Equal(t, "code-1", outcomes[1].Parameters[domain.OauthCode])
	wechat.AssertExpectations(t)

	err = svc.Share(domain.PlatformWeibo, msg, domain.EndpointWeiboTimeline, done)
	assert.ErrorIs(t, err, ErrUnknownPlatform)
	assert.ErrorIs(t, svc.Oauth("line", done), ErrUnknownPlatform)
}

func TestHandoffServiceCallbackDispatch(t *testing.T) {
	wechat := &mockHandler{platform: domain.PlatformWechat}
	weibo := &mockHandler{platform: domain.PlatformWeibo}
	svc, err := NewHandoffService(newTestLogger(), wechat, weibo)
	require.NoError(t, err)

	event, err := domain.ParseCallback("wb1://response", domain.SourceURL)
	require.NoError(t, err)

	wechat.On("Owns", event).Return(false).Once()
	weibo.On("Owns", event).Return(true).Once()
	weibo.On("HandleCallback", event).Once()

	require.NoError(t, svc.HandleCallback(event))
	wechat.AssertExpectations(t)
	weibo.AssertExpectations(t)
	wechat.AssertNotCalled(t, "HandleCallback", mock.Anything)
}

func TestHandoffServiceUnownedCallback(t *testing.T) {
	wechat := &mockHandler{platform: domain.PlatformWechat}
	svc, err := NewHandoffService(newTestLogger(), wechat)
	require.NoError(t, err)

	event, err := domain.ParseCallback("other://x", domain.SourceURL)
	require.NoError(t, err)
	wechat.On("Owns", event).Return(false)

	assert.ErrorIs(t, svc.HandleCallback(event), ErrNoOwner)
	wechat.AssertNotCalled(t, "HandleCallback", mock.Anything)
}
