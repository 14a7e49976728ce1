package ports

import (
	"net/url"

	"handoff/internal/domain"
)

// SharedChannel is the unsynchronized out-of-band slot shared with the peer app.
type SharedChannel interface {
	// Write replaces whatever is currently stored. Last writer wins.
	Write(items domain.ChannelItems) error
	// Read returns the current content, or nil when nothing readable is stored.
	Read() (domain.ChannelItems, error)
}

// TokenStore keeps the process-wide sign token, keyed by the host application.
type TokenStore interface {
	Get(key string) (string, bool, error)
	Set(key, token string) error
}

// LinkOpener asks the operating environment to open a launch link.
type LinkOpener interface {
	// Open returns an error when the environment refused to open the link.
	Open(link *url.URL, universalLinkOnly bool) error
}

// AppProber reports whether a URL scheme can be opened, which is how installed
// peer apps and their supported handshakes are detected.
type AppProber interface {
	CanOpen(scheme string) bool
}

// ShareHandler initiates share requests.
type ShareHandler interface {
	Share(message domain.Message, endpoint domain.Endpoint, done domain.Completion)
}

// OauthHandler initiates oauth requests.
type OauthHandler interface {
	Oauth(done domain.Completion)
}

// CallbackHandler consumes return events from the peer app.
type CallbackHandler interface {
	// Owns reports whether the event is addressed to this handler.
	Owns(event domain.CallbackEvent) bool
	HandleCallback(event domain.CallbackEvent)
}

// PlatformHandler is everything a platform integration provides.
type PlatformHandler interface {
	ShareHandler
	OauthHandler
	CallbackHandler
	Platform() domain.Platform
	Endpoints() []domain.Endpoint
}

// Exporter writes operation history somewhere a human can read it.
type Exporter interface {
	Export(records []domain.OperationRecord) error
}

// RequestParser turns a wire request body into a share request.
type RequestParser interface {
	ParseShare(data []byte) (domain.ShareRequest, error)
}
