package weibo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/internal/domain"
)

func TestCanShare(t *testing.T) {
	for _, kind := range domain.AllKinds() {
		want := kind != domain.KindFile && kind != domain.KindMiniProgram
		assert.Equal(t, want, CanShare(kind, domain.EndpointWeiboTimeline), kind)
		assert.False(t, CanShare(kind, domain.EndpointWechatFriend), kind)
	}
}

func TestAppNumber(t *testing.T) {
	assert.Equal(t, "123456", appNumber("wb123456"))
	assert.Equal(t, "123456", appNumber("123456"))
	assert.Equal(t, "", appNumber("wb"))
}

func TestFormatStartTime(t *testing.T) {
	ts := time.Date(2021, 1, 18, 23, 59, 1, 7_000_000, time.UTC)
	assert.Equal(t, "2021-01-18 23:59:01:007", formatStartTime(ts))
}

func TestShareRoundTrip(t *testing.T) {
	media := domain.Media{Title: "t", Description: "d", Thumbnail: []byte{1}}
	tests := []struct {
		name    string
		message domain.Message
		want    domain.Message
	}{
		{"text", domain.TextMessage{Text: "hello"}, domain.TextMessage{Text: "hello"}},
		{"image", domain.ImageMessage{Data: []byte{1, 2}}, domain.ImageMessage{Data: []byte{1, 2}}},
		{"audio", domain.AudioMessage{Media: media, Link: "https://a", DataLink: "https://a.mp3"}, domain.WebPageMessage{Media: media, Link: "https://a"}},
		{"video", domain.VideoMessage{Media: media, Link: "https://v"}, domain.WebPageMessage{Media: media, Link: "https://v"}},
		{"web page", domain.WebPageMessage{Media: media, Link: "https://p"}, domain.WebPageMessage{Media: media, Link: "https://p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := marshalItems(transferObject{
				Class:     classShareRequest,
				RequestID: "R",
				Message:   encodeMessage(tt.message, "O"),
			}, envelope{appID: "wb1", bundleID: "b", universalLink: "https://u/", startTime: time.Now()})
			require.NoError(t, err)

			req, err := DecodeShareRequest(items)
			require.NoError(t, err)
			assert.Equal(t, "R", req.RequestID)
			assert.Equal(t, "1", req.AppKey)
			assert.Equal(t, tt.want, req.Message)
		})
	}
}

func TestDecodeShareRequestRejectsResponses(t *testing.T) {
	items, err := marshalItems(transferObject{Class: classOauthRequest, RequestID: "R"}, envelope{appID: "wb1"})
	require.NoError(t, err)
	_, err = DecodeShareRequest(items)
	assert.Error(t, err)

	_, err = DecodeShareRequest(nil)
	assert.Error(t, err)
}

func TestEncodeMessagePanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { encodeMessage(domain.FileMessage{}, "O") })
}
