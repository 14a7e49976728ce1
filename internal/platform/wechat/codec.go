package wechat

import (
	"fmt"
	"slices"

	"howett.net/plist"

	"handoff/internal/domain"
)

// Command tags carried in the payload's "command" key.
const (
	commandOauth       = "0"
	commandShareMedia  = "1010"
	commandShareText   = "1020"
	commandShareResult = "2020"
	commandOauthResult = "2030"
)

// Object types for media shares.
const (
	objectImage       = "2"
	objectAudio       = "3"
	objectVideo       = "4"
	objectWebPage     = "5"
	objectFile        = "6"
	objectMiniProgram = "36"
)

const (
	// contentItem is the channel item type holding the binary plist.
	contentItem = "content"
	oldTextKey  = "old_text"
	sdkVersion  = "1.8.7.1"
)

var capabilities = map[domain.Endpoint][]domain.MessageKind{
	domain.EndpointWechatFriend: {
		domain.KindText,
		domain.KindImage,
		domain.KindAudio,
		domain.KindVideo,
		domain.KindWebPage,
		domain.KindFile,
		domain.KindMiniProgram,
	},
	domain.EndpointWechatTimeline: {
		domain.KindText,
		domain.KindImage,
		domain.KindAudio,
		domain.KindVideo,
		domain.KindWebPage,
	},
	domain.EndpointWechatFavorite: {
		domain.KindText,
		domain.KindImage,
		domain.KindAudio,
		domain.KindVideo,
		domain.KindWebPage,
		domain.KindFile,
	},
}

// CanShare reports whether kind may be sent to endpoint.
func CanShare(kind domain.MessageKind, endpoint domain.Endpoint) bool {
	return slices.Contains(capabilities[endpoint], kind)
}

var scenes = map[domain.Endpoint]string{
	domain.EndpointWechatFriend:   "0", // WXSceneSession
	domain.EndpointWechatTimeline: "1", // WXSceneTimeline
	domain.EndpointWechatFavorite: "2", // WXSceneFavorite
}

func scene(endpoint domain.Endpoint) (string, bool) {
	s, ok := scenes[endpoint]
	return s, ok
}

func endpointForScene(s string) (domain.Endpoint, bool) {
	for endpoint, v := range scenes {
		if v == s {
			return endpoint, true
		}
	}
	return "", false
}

func miniProgramType(t domain.MiniProgramType) int {
	switch t {
	case domain.MiniProgramTest:
		return 1 // WXMiniProgramTypeTest
	case domain.MiniProgramPreview:
		return 2 // WXMiniProgramTypePreview
	default:
		return 0 // WXMiniProgramTypeRelease
	}
}

// encodeShare maps a message to the command keys. An unknown variant is a
// programming error and panics.
func encodeShare(message domain.Message, sceneValue string) domain.Payload {
	p := domain.Payload{
		"command": commandShareMedia,
		"scene":   sceneValue,
	}

	if m, ok := message.(domain.MediaMessage); ok {
		media := m.MediaInfo()
		putString(p, "title", media.Title)
		putString(p, "description", media.Description)
		putBytes(p, "thumbData", media.Thumbnail)
	}

	switch m := message.(type) {
	case domain.TextMessage:
		p["command"] = commandShareText
		putString(p, "title", m.Text)
	case domain.ImageMessage:
		p["objectType"] = objectImage
		putBytes(p, "fileData", m.Data)
	case domain.AudioMessage:
		p["objectType"] = objectAudio
		putString(p, "mediaDataUrl", m.DataLink)
		putString(p, "mediaUrl", m.Link)
	case domain.VideoMessage:
		p["objectType"] = objectVideo
		putString(p, "mediaUrl", m.Link)
	case domain.WebPageMessage:
		p["objectType"] = objectWebPage
		putString(p, "mediaUrl", m.Link)
	case domain.FileMessage:
		p["objectType"] = objectFile
		putBytes(p, "fileData", m.Data)
		putString(p, "fileExt", m.Extension)
	case domain.MiniProgramMessage:
		p["objectType"] = objectMiniProgram
		putString(p, "appBrandPath", m.Path)
		putString(p, "appBrandUserName", m.ProgramID)
		p["disableForward"] = false
		putBytes(p, "hdThumbData", m.Thumbnail)
		putString(p, "mediaUrl", m.Link)
		p["miniprogramType"] = miniProgramType(m.ReleaseMode)
		p["withShareTicket"] = false
	default:
		panic(fmt.Sprintf("wechat: unhandled message type %T", message))
	}

	return p
}

func putString(p domain.Payload, key, value string) {
	if value != "" {
		p[key] = value
	}
}

func putBytes(p domain.Payload, key string, value []byte) {
	if len(value) > 0 {
		p[key] = value
	}
}

// marshalEnvelope adds protocol bookkeeping, namespaces the payload under appID and
// serializes it as a binary plist.
func marshalEnvelope(appID, universalLink string, p domain.Payload, oldText string) ([]byte, error) {
	items := make(map[string]any, len(p)+5)
	for k, v := range p {
		items[k] = v
	}
	items["isAutoResend"] = false
	items["result"] = "1"
	items["returnFromApp"] = "0"
	items["sdkver"] = sdkVersion
	items["universalLink"] = universalLink

	envelope := map[string]any{appID: items}
	if oldText != "" {
		envelope[oldTextKey] = oldText
	}

	data, err := plist.Marshal(envelope, plist.BinaryFormat)
	if err != nil {
		return nil, fmt.Errorf("marshal pasteboard plist: %w", err)
	}
	return data, nil
}

// unmarshalEnvelope returns the entry under appID. Anything missing or of the
// wrong shape is reported as no payload.
func unmarshalEnvelope(appID string, items domain.ChannelItems) (domain.Payload, bool) {
	data := items[contentItem]
	if len(data) == 0 {
		return nil, false
	}
	var envelope map[string]any
	if _, err := plist.Unmarshal(data, &envelope); err != nil {
		return nil, false
	}
	entry, ok := envelope[appID].(map[string]any)
	if !ok {
		return nil, false
	}
	return domain.Payload(entry), true
}

// decodeShareResult maps the peer's share result code.
func decodeShareResult(p domain.Payload) domain.Outcome {
	switch p.String("result") {
	case "0":
		return domain.Succeeded(nil)
	case "-2":
		return domain.Failed(domain.ErrUserCancelled)
	default:
		return domain.Failed(domain.ErrUnknown)
	}
}

// decodeOauthResult maps the peer's oauth result code. Successful oauth never
// travels through the channel; it arrives as a code in the callback URL.
func decodeOauthResult(p domain.Payload) domain.Outcome {
	switch p.String("result") {
	case "-4", "-2":
		return domain.Failed(domain.ErrUserCancelled)
	default:
		return domain.Failed(domain.ErrUnknown)
	}
}

// ShareRequest is a share payload read back from the channel.
type ShareRequest struct {
	Command  string
	Endpoint domain.Endpoint
	Message  domain.Message
}

// DecodeShareRequest reads a share this codec wrote for appID back into a message.
func DecodeShareRequest(appID string, items domain.ChannelItems) (ShareRequest, error) {
	p, ok := unmarshalEnvelope(appID, items)
	if !ok {
		return ShareRequest{}, fmt.Errorf("no payload for %s", appID)
	}

	req := ShareRequest{Command: p.String("command")}
	endpoint, ok := endpointForScene(p.String("scene"))
	if !ok {
		return ShareRequest{}, fmt.Errorf("unknown scene %q", p.String("scene"))
	}
	req.Endpoint = endpoint

	media := domain.Media{
		Title:       p.String("title"),
		Description: p.String("description"),
		Thumbnail:   p.Bytes("thumbData"),
	}

	if req.Command == commandShareText {
		req.Message = domain.TextMessage{Text: p.String("title")}
		return req, nil
	}
	if req.Command != commandShareMedia {
		return ShareRequest{}, fmt.Errorf("unexpected command %q", req.Command)
	}

	switch p.String("objectType") {
	case objectImage:
		req.Message = domain.ImageMessage{Media: media, Data: p.Bytes("fileData")}
	case objectAudio:
		req.Message = domain.AudioMessage{Media: media, Link: p.String("mediaUrl"), DataLink: p.String("mediaDataUrl")}
	case objectVideo:
		req.Message = domain.VideoMessage{Media: media, Link: p.String("mediaUrl")}
	case objectWebPage:
		req.Message = domain.WebPageMessage{Media: media, Link: p.String("mediaUrl")}
	case objectFile:
		req.Message = domain.FileMessage{Media: media, Data: p.Bytes("fileData"), Extension: p.String("fileExt")}
	case objectMiniProgram:
		mode, _ := asInt(p["miniprogramType"])
		req.Message = domain.MiniProgramMessage{
			Media:       media,
			Path:        p.String("appBrandPath"),
			ProgramID:   p.String("appBrandUserName"),
			Link:        p.String("mediaUrl"),
			ReleaseMode: domain.MiniProgramType(mode),
		}
	default:
		return ShareRequest{}, fmt.Errorf("unknown object type %q", p.String("objectType"))
	}
	return req, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
