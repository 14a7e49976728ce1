package domain

// MessageKind is the stable identifier of a message variant used for capability checks.
type MessageKind string

const (
	KindText        MessageKind = "text"
	KindImage       MessageKind = "image"
	KindAudio       MessageKind = "audio"
	KindVideo       MessageKind = "video"
	KindWebPage     MessageKind = "web_page"
	KindFile        MessageKind = "file"
	KindMiniProgram MessageKind = "mini_program"
)

// Message is the closed set of content a host can hand to a peer app.
// Only the variants declared in this package implement it.
type Message interface {
	Kind() MessageKind
	sealed()
}

// MediaMessage is implemented by variants that carry a title, description and thumbnail.
type MediaMessage interface {
	Message
	MediaInfo() Media
}

// Media holds the optional presentation fields shared by media variants.
// Empty values mean the field is absent.
type Media struct {
	Title       string
	Description string
	Thumbnail   []byte
}

// MediaInfo returns the embedded presentation fields.
func (m Media) MediaInfo() Media { return m }

// TextMessage is plain text.
type TextMessage struct {
	Text string
}

// ImageMessage carries encoded image bytes.
type ImageMessage struct {
	Media
	Data []byte
}

// AudioMessage points at a web page for a track and, optionally, at its stream.
type AudioMessage struct {
	Media
	Link     string
	DataLink string
}

// VideoMessage points at a video page.
type VideoMessage struct {
	Media
	Link string
}

// WebPageMessage points at an arbitrary web page.
type WebPageMessage struct {
	Media
	Link string
}

// FileMessage carries file bytes and the extension the peer should use for them.
type FileMessage struct {
	Media
	Data      []byte
	Extension string
}

// MiniProgramType selects which build of a mini program the peer opens.
type MiniProgramType int

const (
	MiniProgramRelease MiniProgramType = iota
	MiniProgramTest
	MiniProgramPreview
)

// MiniProgramMessage opens a page of a mini program hosted inside the peer app.
type MiniProgramMessage struct {
	Media
	Path        string
	ProgramID   string
	Link        string
	ReleaseMode MiniProgramType
}

func (TextMessage) Kind() MessageKind        { return KindText }
func (ImageMessage) Kind() MessageKind       { return KindImage }
func (AudioMessage) Kind() MessageKind       { return KindAudio }
func (VideoMessage) Kind() MessageKind       { return KindVideo }
func (WebPageMessage) Kind() MessageKind     { return KindWebPage }
func (FileMessage) Kind() MessageKind        { return KindFile }
func (MiniProgramMessage) Kind() MessageKind { return KindMiniProgram }

func (TextMessage) sealed()        {}
func (ImageMessage) sealed()       {}
func (AudioMessage) sealed()       {}
func (VideoMessage) sealed()       {}
func (WebPageMessage) sealed()     {}
func (FileMessage) sealed()        {}
func (MiniProgramMessage) sealed() {}

// AllKinds lists every message kind in declaration order.
func AllKinds() []MessageKind {
	return []MessageKind{
		KindText,
		KindImage,
		KindAudio,
		KindVideo,
		KindWebPage,
		KindFile,
		KindMiniProgram,
	}
}
