package weibo

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/fxamacker/cbor/v2"

	"handoff/internal/domain"
)

// Channel item types.
const (
	itemTransferObject = "transferObject"
	itemUserInfo       = "userInfo"
	itemApp            = "app"
	itemSDKVersion     = "sdkVersion"
)

// Object class tags.
const (
	classShareRequest  = "WBSendMessageToWeiboRequest"
	classShareResponse = "WBSendMessageToWeiboResponse"
	classOauthRequest  = "WBAuthorizeRequest"
	classOauthResponse = "WBAuthorizeResponse"
	classMessage       = "WBMessageObject"
	classWebpage       = "WBWebpageObject"
)

const (
	sdkVersion      = "003233000"
	sdkShortVersion = "3.3"
)

const (
	statusSuccess   = 0
	statusCancelled = -1
)

type transferObject struct {
	Class       string         `cbor:"__class"`
	RequestID   string         `cbor:"requestID,omitempty"`
	RedirectURI string         `cbor:"redirectURI,omitempty"`
	Message     *messageObject `cbor:"message,omitempty"`

	StatusCode     *int       `cbor:"statusCode,omitempty"`
	AccessToken    string     `cbor:"accessToken,omitempty"`
	ExpirationDate *time.Time `cbor:"expirationDate,omitempty"`
	RefreshToken   string     `cbor:"refreshToken,omitempty"`
	UserID         string     `cbor:"userID,omitempty"`
}

type messageObject struct {
	Class       string         `cbor:"__class"`
	Text        string         `cbor:"text,omitempty"`
	ImageObject *imageObject   `cbor:"imageObject,omitempty"`
	MediaObject *webpageObject `cbor:"mediaObject,omitempty"`
}

type imageObject struct {
	ImageData []byte `cbor:"imageData"`
}

type webpageObject struct {
	Class         string `cbor:"__class"`
	Description   string `cbor:"description,omitempty"`
	ObjectID      string `cbor:"objectID"`
	ThumbnailData []byte `cbor:"thumbnailData,omitempty"`
	Title         string `cbor:"title,omitempty"`
	WebpageURL    string `cbor:"webpageUrl"`
}

type userInfo struct {
	StartTime string `cbor:"startTime"`
}

type appInfo struct {
	AppKey        string `cbor:"appKey"`
	BundleID      string `cbor:"bundleID,omitempty"`
	UniversalLink string `cbor:"universalLink"`
}

var timelineKinds = []domain.MessageKind{
	domain.KindText,
	domain.KindImage,
	domain.KindAudio,
	domain.KindVideo,
	domain.KindWebPage,
}

// CanShare reports whether kind may be sent to endpoint.
func CanShare(kind domain.MessageKind, endpoint domain.Endpoint) bool {
	return endpoint == domain.EndpointWeiboTimeline && slices.Contains(timelineKinds, kind)
}

// appNumber strips the letters from an app id such as "wb123456".
func appNumber(appID string) string {
	return strings.TrimFunc(appID, unicode.IsLetter)
}

// formatStartTime renders t as yyyy-MM-dd HH:mm:ss:SSS.
func formatStartTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05") + fmt.Sprintf(":%03d", t.Nanosecond()/int(time.Millisecond))
}

// encodeMessage maps a message to its object graph. objectID names the media
// object, if one is built. An unknown or disallowed variant panics.
func encodeMessage(message domain.Message, objectID string) *messageObject {
	m := &messageObject{Class: classMessage}

	webpage := func(media domain.Media, link string) *webpageObject {
		return &webpageObject{
			Class:         classWebpage,
			Description:   media.Description,
			ObjectID:      objectID,
			ThumbnailData: media.Thumbnail,
			Title:         media.Title,
			WebpageURL:    link,
		}
	}

	switch msg := message.(type) {
	case domain.TextMessage:
		m.Text = msg.Text
	case domain.ImageMessage:
		m.ImageObject = &imageObject{ImageData: msg.Data}
	case domain.AudioMessage:
		m.MediaObject = webpage(msg.Media, msg.Link)
	case domain.VideoMessage:
		m.MediaObject = webpage(msg.Media, msg.Link)
	case domain.WebPageMessage:
		m.MediaObject = webpage(msg.Media, msg.Link)
	default:
		panic(fmt.Sprintf("weibo: unhandled message type %T", message))
	}
	return m
}

// envelope is everything besides the transfer object that accompanies a request.
type envelope struct {
	appID         string
	bundleID      string
	universalLink string
	startTime     time.Time
}

// marshalItems encodes the four channel items.
func marshalItems(obj transferObject, env envelope) (domain.ChannelItems, error) {
	transfer, err := cbor.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode transfer object: %w", err)
	}
	info, err := cbor.Marshal(userInfo{StartTime: formatStartTime(env.startTime)})
	if err != nil {
		return nil, fmt.Errorf("encode user info: %w", err)
	}
	app, err := cbor.Marshal(appInfo{
		AppKey:        appNumber(env.appID),
		BundleID:      env.bundleID,
		UniversalLink: env.universalLink,
	})
	if err != nil {
		return nil, fmt.Errorf("encode app: %w", err)
	}
	return domain.ChannelItems{
		itemTransferObject: transfer,
		itemUserInfo:       info,
		itemApp:            app,
		itemSDKVersion:     []byte(sdkVersion),
	}, nil
}

// unmarshalTransfer reads the transfer object. Anything missing or undecodable
// is reported as no payload.
func unmarshalTransfer(items domain.ChannelItems) (transferObject, bool) {
	data := items[itemTransferObject]
	if len(data) == 0 {
		return transferObject{}, false
	}
	var obj transferObject
	if err := cbor.Unmarshal(data, &obj); err != nil {
		return transferObject{}, false
	}
	return obj, true
}

func decodeShareResult(obj transferObject) domain.Outcome {
	if obj.StatusCode == nil {
		return domain.Failed(domain.ErrUnknown)
	}
	switch *obj.StatusCode {
	case statusSuccess:
		return domain.Succeeded(nil)
	case statusCancelled:
		return domain.Failed(domain.ErrUserCancelled)
	default:
		return domain.Failed(domain.ErrUnknown)
	}
}

func decodeOauthResult(obj transferObject) domain.Outcome {
	if obj.StatusCode == nil {
		return domain.Failed(domain.ErrUnknown)
	}
	switch *obj.StatusCode {
	case statusSuccess:
		var expiration string
		if obj.ExpirationDate != nil {
			expiration = obj.ExpirationDate.UTC().Format(time.RFC3339)
		}
		params := domain.CompactParameters(map[string]string{
			domain.OauthAccessToken:    obj.AccessToken,
			domain.OauthExpirationDate: expiration,
			domain.OauthRefreshToken:   obj.RefreshToken,
			domain.OauthUserID:         obj.UserID,
		})
		if params == nil {
			return domain.Failed(domain.ErrUnknown)
		}
		return domain.Succeeded(params)
	case statusCancelled:
		return domain.Failed(domain.ErrUserCancelled)
	default:
		return domain.Failed(domain.ErrUnknown)
	}
}

// ShareRequest is a share read back from the channel. Weibo carries audio,
// video and web pages as the same web page object, so those decode as
// domain.WebPageMessage.
type ShareRequest struct {
	Class     string
	RequestID string
	ObjectID  string
	AppKey    string
	Message   domain.Message
}

// DecodeShareRequest reads a share this codec wrote back into a message.
func DecodeShareRequest(items domain.ChannelItems) (ShareRequest, error) {
	obj, ok := unmarshalTransfer(items)
	if !ok {
		return ShareRequest{}, fmt.Errorf("no transfer object")
	}
	if obj.Class != classShareRequest || obj.Message == nil {
		return ShareRequest{}, fmt.Errorf("unexpected class %q", obj.Class)
	}

	req := ShareRequest{Class: obj.Class, RequestID: obj.RequestID}
	var app appInfo
	if err := cbor.Unmarshal(items[itemApp], &app); err == nil {
		req.AppKey = app.AppKey
	}

	m := obj.Message
	switch {
	case m.ImageObject != nil:
		req.Message = domain.ImageMessage{Data: m.ImageObject.ImageData}
	case m.MediaObject != nil:
		req.ObjectID = m.MediaObject.ObjectID
		req.Message = domain.WebPageMessage{
			Media: domain.Media{
				Title:       m.MediaObject.Title,
				Description: m.MediaObject.Description,
				Thumbnail:   m.MediaObject.ThumbnailData,
			},
			Link: m.MediaObject.WebpageURL,
		}
	default:
		req.Message = domain.TextMessage{Text: m.Text}
	}
	return req, nil
}
