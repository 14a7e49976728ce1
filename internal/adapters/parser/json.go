package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"handoff/internal/domain"
	"handoff/internal/ports"
)

// ErrInvalidRequest wraps every validation failure.
var ErrInvalidRequest = errors.New("invalid share request")

// MessageBody is the JSON form of a message. Byte fields are base64 encoded.
type MessageBody struct {
	Kind        domain.MessageKind `json:"kind"`
	Text        string             `json:"text,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Thumbnail   []byte             `json:"thumbnail,omitempty"`
	Link        string             `json:"link,omitempty"`
	DataLink    string             `json:"data_link,omitempty"`
	Data        []byte             `json:"data,omitempty"`
	Extension   string             `json:"extension,omitempty"`
	Path        string             `json:"path,omitempty"`
	ProgramID   string             `json:"program_id,omitempty"`
	ReleaseMode string             `json:"release_mode,omitempty"`
}

// ShareBody is the JSON body of a share request.
type ShareBody struct {
	Endpoint domain.Endpoint `json:"endpoint"`
	Message  MessageBody     `json:"message"`
}

// JSONParser parses JSON share requests.
type JSONParser struct{}

// NewJSONParser creates a JSONParser.
func NewJSONParser() ports.RequestParser {
	return &JSONParser{}
}

// ParseShare decodes and validates a share request body.
func (p *JSONParser) ParseShare(data []byte) (domain.ShareRequest, error) {
	var body ShareBody
	if err := json.Unmarshal(data, &body); err != nil {
		return domain.ShareRequest{}, fmt.Errorf("%w: unmarshal json: %v", ErrInvalidRequest, err)
	}
	if body.Endpoint == "" {
		return domain.ShareRequest{}, fmt.Errorf("%w: endpoint is required", ErrInvalidRequest)
	}
	msg, err := body.Message.ToMessage()
	if err != nil {
		return domain.ShareRequest{}, err
	}
	return domain.ShareRequest{Endpoint: body.Endpoint, Message: msg}, nil
}

var releaseModes = map[string]domain.MiniProgramType{
	"":        domain.MiniProgramRelease,
	"release": domain.MiniProgramRelease,
	"test":    domain.MiniProgramTest,
	"preview": domain.MiniProgramPreview,
}

// ToMessage validates the body and builds the message variant it names.
func (b MessageBody) ToMessage() (domain.Message, error) {
	media := domain.Media{Title: b.Title, Description: b.Description, Thumbnail: b.Thumbnail}

	var (
		msg     domain.Message
		missing string
	)
	switch b.Kind {
	case domain.KindText:
		msg = domain.TextMessage{Text: b.Text}
		if b.Text == "" {
			missing = "text"
		}
	case domain.KindImage:
		msg = domain.ImageMessage{Media: media, Data: b.Data}
		if len(b.Data) == 0 {
			missing = "data"
		}
	case domain.KindAudio:
		msg = domain.AudioMessage{Media: media, Link: b.Link, DataLink: b.DataLink}
	case domain.KindVideo:
		msg = domain.VideoMessage{Media: media, Link: b.Link}
	case domain.KindWebPage:
		msg = domain.WebPageMessage{Media: media, Link: b.Link}
	case domain.KindFile:
		msg = domain.FileMessage{Media: media, Data: b.Data, Extension: b.Extension}
		switch {
		case len(b.Data) == 0:
			missing = "data"
		case b.Extension == "":
			missing = "extension"
		}
	case domain.KindMiniProgram:
		mode, ok := releaseModes[b.ReleaseMode]
		if !ok {
			return nil, fmt.Errorf("%w: unknown release mode %q", ErrInvalidRequest, b.ReleaseMode)
		}
		msg = domain.MiniProgramMessage{
			Media:       media,
			Path:        b.Path,
			ProgramID:   b.ProgramID,
			Link:        b.Link,
			ReleaseMode: mode,
		}
		switch {
		case b.Path == "":
			missing = "path"
		case b.ProgramID == "":
			missing = "program_id"
		}
	default:
		return nil, fmt.Errorf("%w: unknown message kind %q", ErrInvalidRequest, b.Kind)
	}

	switch b.Kind {
	case domain.KindAudio, domain.KindVideo, domain.KindWebPage, domain.KindMiniProgram:
		if missing == "" && b.Link == "" {
			missing = "link"
		}
	}
	if missing != "" {
		return nil, fmt.Errorf("%w: %s message requires %s", ErrInvalidRequest, b.Kind, missing)
	}
	return msg, nil
}

// FromMessage is the inverse of ToMessage.
func FromMessage(message domain.Message) MessageBody {
	b := MessageBody{Kind: message.Kind()}
	if m, ok := message.(domain.MediaMessage); ok {
		media := m.MediaInfo()
		b.Title, b.Description, b.Thumbnail = media.Title, media.Description, media.Thumbnail
	}

	switch m := message.(type) {
	case domain.TextMessage:
		b.Text = m.Text
	case domain.ImageMessage:
		b.Data = m.Data
	case domain.AudioMessage:
		b.Link, b.DataLink = m.Link, m.DataLink
	case domain.VideoMessage:
		b.Link = m.Link
	case domain.WebPageMessage:
		b.Link = m.Link
	case domain.FileMessage:
		b.Data, b.Extension = m.Data, m.Extension
	case domain.MiniProgramMessage:
		b.Path, b.ProgramID, b.Link = m.Path, m.ProgramID, m.Link
		for name, mode := range releaseModes {
			if name != "" && mode == m.ReleaseMode {
				b.ReleaseMode = name
			}
		}
	}
	return b
}
