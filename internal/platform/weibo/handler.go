// Package weibo implements the handoff protocol spoken by the Weibo app: four
// encoded items on the shared channel and a universal link carrying the
// request id.
package weibo

import (
	"errors"
	"log/slog"
	"net/url"
	"time"

	"handoff/internal/core/launch"
	"handoff/internal/core/pending"
	"handoff/internal/domain"
	"handoff/internal/ports"
)

const (
	installedScheme = "sinaweibo://"
	handshakeScheme = "weibosdk3.3://"
)

// ErrInvalidConfig is returned by NewHandler when the app identity is incomplete.
var ErrInvalidConfig = errors.New("weibo: app id, universal link and redirect link are required")

// Config is the host's registration with Weibo.
type Config struct {
	// AppID is the app key, optionally prefixed with letters such as "wb".
	AppID         string
	UniversalLink *url.URL
	// RedirectLink is echoed to the peer in oauth requests.
	RedirectLink *url.URL
	BundleID     string
}

// Handler is the Weibo share, oauth and callback handler.
type Handler struct {
	cfg       Config
	channel   ports.SharedChannel
	opener    ports.LinkOpener
	prober    ports.AppProber
	registry  *pending.Registry
	requestID launch.ContextIDFunc
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithRequestID replaces the generator used for request and object ids.
func WithRequestID(fn launch.ContextIDFunc) Option {
	return func(h *Handler) {
		h.requestID = fn
	}
}

// WithClock replaces the clock used for the start time item.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler creates a handler for one registered app.
func NewHandler(cfg Config, channel ports.SharedChannel, opener ports.LinkOpener, prober ports.AppProber, opts ...Option) (*Handler, error) {
	if appNumber(cfg.AppID) == "" || cfg.UniversalLink == nil || cfg.RedirectLink == nil {
		return nil, ErrInvalidConfig
	}
	h := &Handler{
		cfg:       cfg,
		channel:   channel,
		opener:    opener,
		prober:    prober,
		registry:  pending.NewRegistry(),
		requestID: launch.NewRequestID,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "weibo", "app_id", cfg.AppID)
	return h, nil
}

// Platform implements ports.PlatformHandler.
func (h *Handler) Platform() domain.Platform { return domain.PlatformWeibo }

// Endpoints implements ports.PlatformHandler.
func (h *Handler) Endpoints() []domain.Endpoint {
	return []domain.Endpoint{domain.EndpointWeiboTimeline}
}

func (h *Handler) probe() error {
	if !h.prober.CanOpen(installedScheme) {
		return domain.ErrMissingApplication
	}
	if !h.prober.CanOpen(handshakeScheme) {
		return domain.ErrUnsupportedApplication
	}
	return nil
}

// Share implements ports.ShareHandler.
func (h *Handler) Share(message domain.Message, endpoint domain.Endpoint, done domain.Completion) {
	if err := h.probe(); err != nil {
		done(domain.Outcome{Err: err})
		return
	}
	if !CanShare(message.Kind(), endpoint) {
		done(domain.Failed(domain.ErrUnsupportedMessage))
		return
	}

	if h.registry.Register(domain.OperationShare, done) {
		h.logger.Debug("previous share superseded")
	}

	requestID := h.requestID()
	obj := transferObject{
		Class:     classShareRequest,
		RequestID: requestID,
		Message:   encodeMessage(message, h.requestID()),
	}
	h.dispatch(domain.OperationShare, obj)
}

// Oauth implements ports.OauthHandler.
func (h *Handler) Oauth(done domain.Completion) {
	if err := h.probe(); err != nil {
		done(domain.Outcome{Err: err})
		return
	}

	if h.registry.Register(domain.OperationOauth, done) {
		h.logger.Debug("previous oauth superseded")
	}

	h.dispatch(domain.OperationOauth, transferObject{
		Class:       classOauthRequest,
		RedirectURI: h.cfg.RedirectLink.String(),
		RequestID:   h.requestID(),
	})
}

// dispatch writes obj to the channel and opens the request link, resolving kind
// on any failure.
func (h *Handler) dispatch(kind domain.OperationKind, obj transferObject) {
	items, err := marshalItems(obj, envelope{
		appID:         h.cfg.AppID,
		bundleID:      h.cfg.BundleID,
		universalLink: h.cfg.UniversalLink.String(),
		startTime:     h.now(),
	})
	if err == nil {
		err = h.channel.Write(items)
	}
	if err != nil {
		h.logger.Error("write request", "kind", kind, "error", err)
		h.registry.Resolve(kind, domain.Failed(domain.ErrInvalidMessage))
		return
	}

	link, ok := h.requestLink(obj.RequestID)
	if !ok {
		h.registry.Resolve(kind, domain.Failed(domain.ErrInvalidParameter))
		return
	}
	if err := h.opener.Open(link, true); err != nil {
		h.logger.Error("open request link", "kind", kind, "error", err)
		h.registry.Resolve(kind, domain.Failed(domain.ErrUnknown))
		return
	}
	h.logger.Info("request dispatched", "kind", kind, "request_id", obj.RequestID)
}

// HandleCallback implements ports.CallbackHandler.
func (h *Handler) HandleCallback(event domain.CallbackEvent) {
	h.logger.Debug("callback", "source", event.Source, "url", event.Raw)

	if !h.isGeneric(event) {
		h.failSafe(event, "unrecognized callback")
		return
	}

	items, err := h.channel.Read()
	if err != nil {
		h.logger.Warn("read channel", "error", err)
	}
	obj, ok := unmarshalTransfer(items)
	if !ok {
		h.failSafe(event, "no transfer object on channel")
		return
	}

	switch obj.Class {
	case classShareResponse:
		h.registry.Resolve(domain.OperationShare, decodeShareResult(obj))
	case classOauthResponse:
		h.registry.Resolve(domain.OperationOauth, decodeOauthResult(obj))
	default:
		h.failSafe(event, "unrecognized class "+obj.Class)
	}
}

func (h *Handler) failSafe(event domain.CallbackEvent, why string) {
	kind, ok := h.registry.ResolveLatest(domain.Failed(domain.ErrUnknown))
	if !ok {
		h.logger.Warn("callback ignored, nothing pending", "reason", why, "url", event.Raw)
		return
	}
	h.logger.Warn("callback failed pending operation", "reason", why, "kind", kind, "url", event.Raw)
}
