// Package wechat implements the handoff protocol spoken by the WeChat app: a
// binary plist on the shared channel, universal links for launch, and a sign
// token escalation when the peer cannot verify the host.
package wechat

import (
	"errors"
	"log/slog"
	"net/url"

	"handoff/internal/core/escalation"
	"handoff/internal/core/launch"
	"handoff/internal/core/pending"
	"handoff/internal/domain"
	"handoff/internal/ports"
)

const (
	installedScheme = "weixin://"
	handshakeScheme = "weixinULAPI://"
)

// ErrInvalidConfig is returned by NewHandler when the app identity is incomplete.
var ErrInvalidConfig = errors.New("wechat: app id and universal link are required")

// Config is the host's registration with WeChat.
type Config struct {
	AppID string
	// UniversalLink is the host's own universal link base, e.g. https://example.com/app/.
	UniversalLink *url.URL
	// BundleID identifies the host to the peer. Links cannot be built without it.
	BundleID string
}

// Handler is the WeChat share, oauth and callback handler.
type Handler struct {
	cfg       Config
	channel   ports.SharedChannel
	tokens    ports.TokenStore
	opener    ports.LinkOpener
	prober    ports.AppProber
	registry  *pending.Registry
	machine   *escalation.Machine
	contextID launch.ContextIDFunc
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

// WithContextID replaces the context id generator.
func WithContextID(fn launch.ContextIDFunc) Option {
	return func(h *Handler) {
		h.contextID = fn
	}
}

// NewHandler creates a handler for one registered app.
func NewHandler(cfg Config, channel ports.SharedChannel, tokens ports.TokenStore, opener ports.LinkOpener, prober ports.AppProber, opts ...Option) (*Handler, error) {
	if cfg.AppID == "" || cfg.UniversalLink == nil {
		return nil, ErrInvalidConfig
	}
	h := &Handler{
		cfg:       cfg,
		channel:   channel,
		tokens:    tokens,
		opener:    opener,
		prober:    prober,
		registry:  pending.NewRegistry(),
		machine:   escalation.New(),
		contextID: launch.NewContextID,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "wechat", "app_id", cfg.AppID)
	return h, nil
}

// Platform implements ports.PlatformHandler.
func (h *Handler) Platform() domain.Platform { return domain.PlatformWechat }

// Endpoints implements ports.PlatformHandler.
func (h *Handler) Endpoints() []domain.Endpoint {
	return []domain.Endpoint{
		domain.EndpointWechatFriend,
		domain.EndpointWechatTimeline,
		domain.EndpointWechatFavorite,
	}
}

// State returns the escalation state of the current share.
func (h *Handler) State() escalation.State {
	return h.machine.State()
}

// TokenKey is the token store key holding the sign token for appID.
func TokenKey(appID string) string {
	return "wechat.sign_token." + appID
}

func (h *Handler) tokenKey() string {
	return TokenKey(h.cfg.AppID)
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

// signToken returns the stored token, or "" when none is held. A store error
// is treated as no token.
func (h *Handler) signToken() string {
	token, ok, err := h.tokens.Get(h.tokenKey())
	if err != nil {
		h.logger.Warn("read sign token", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// write encodes p with bookkeeping and the current plain-text snapshot and stores it.
func (h *Handler) write(p domain.Payload) (domain.ChannelItems, error) {
	var oldText string
	if current, err := h.channel.Read(); err == nil {
		oldText = string(current[domain.PlainTextItem])
	}
	data, err := marshalEnvelope(h.cfg.AppID, h.cfg.UniversalLink.String(), p, oldText)
	if err != nil {
		return nil, err
	}
	items := domain.ChannelItems{contentItem: data}
	if err := h.channel.Write(items); err != nil {
		return nil, err
	}
	return items, nil
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
	sceneValue, ok := scene(endpoint)
	if !ok {
		done(domain.Failed(domain.ErrInvalidParameter))
		return
	}

	if h.registry.Register(domain.OperationShare, done) {
		h.logger.Debug("previous share superseded")
	}
	h.machine.Reset()

	items, err := h.write(encodeShare(message, sceneValue))
	if err != nil {
		h.logger.Error("write share payload", "error", err)
		h.failShare(domain.ErrInvalidMessage)
		return
	}

	token := h.signToken()
	link, ok := h.shareLink(token)
	if !ok {
		h.failShare(domain.ErrInvalidParameter)
		return
	}

	h.machine.Sent(items, token != "")
	if err := h.opener.Open(link, true); err != nil {
		h.logger.Error("open share link", "error", err)
		h.failShare(domain.ErrUnknown)
		return
	}
	h.logger.Info("share dispatched", "endpoint", endpoint, "kind", message.Kind(), "link", link.String())
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

	if _, err := h.write(domain.Payload{"command": commandOauth}); err != nil {
		h.logger.Error("write oauth payload", "error", err)
		h.registry.Resolve(domain.OperationOauth, domain.Failed(domain.ErrInvalidMessage))
		return
	}

	link, ok := h.oauthLink()
	if !ok {
		h.registry.Resolve(domain.OperationOauth, domain.Failed(domain.ErrInvalidParameter))
		return
	}
	if err := h.opener.Open(link, true); err != nil {
		h.logger.Error("open oauth link", "error", err)
		h.registry.Resolve(domain.OperationOauth, domain.Failed(domain.ErrUnknown))
		return
	}
	h.logger.Info("oauth dispatched", "link", link.String())
}

// HandleCallback implements ports.CallbackHandler.
func (h *Handler) HandleCallback(event domain.CallbackEvent) {
	r := h.route(event)
	h.logger.Debug("callback", "source", event.Source, "route", r, "url", event.Raw)

	switch r {
	case routeGeneric:
		h.handleGeneric(event)
	case routeOauthCode:
		h.handleOauthCode(event)
	case routeTokenRefresh:
		token, ok := event.QueryValue("wechat_auth_token")
		switch {
		case ok:
			h.handleTokenRefreshed(token)
		case event.Query.Has("wechat_auth_token"):
			h.logger.Warn("token refresh without a token value", "url", event.Raw)
			h.failShare(domain.ErrInvalidParameter)
		default:
			h.handleNeedsToken()
		}
	case routeTokenUnavailable:
		h.handleTokenUnavailable()
	default:
		h.failSafe(event, "unrecognized callback")
	}
}

func (h *Handler) handleGeneric(event domain.CallbackEvent) {
	items, err := h.channel.Read()
	if err != nil {
		h.logger.Warn("read channel", "error", err)
	}
	p, ok := unmarshalEnvelope(h.cfg.AppID, items)
	if !ok {
		h.failSafe(event, "no payload on channel")
		return
	}

	switch command := p.String("command"); command {
	case commandShareResult:
		h.machine.Reset()
		h.registry.Resolve(domain.OperationShare, decodeShareResult(p))
	case commandOauthResult:
		h.registry.Resolve(domain.OperationOauth, decodeOauthResult(p))
	default:
		h.failSafe(event, "unrecognized command "+command)
	}
}

func (h *Handler) handleOauthCode(event domain.CallbackEvent) {
	code, ok := event.QueryValue(domain.OauthCode)
	if !ok {
		h.registry.Resolve(domain.OperationOauth, domain.Failed(domain.ErrInvalidParameter))
		return
	}
	h.registry.Resolve(domain.OperationOauth, domain.Succeeded(map[string]string{domain.OauthCode: code}))
}

func (h *Handler) handleNeedsToken() {
	if err := h.machine.NeedsToken(); err != nil {
		h.logger.Warn("needs token signal rejected", "error", err)
		h.registry.Resolve(domain.OperationShare, domain.Outcome{Err: err})
		return
	}
	h.logger.Info("awaiting sign token")
}

func (h *Handler) handleTokenRefreshed(token string) {
	retained, err := h.machine.TokenRefreshed()
	if err != nil {
		h.logger.Warn("token refresh rejected", "error", err)
		h.registry.Resolve(domain.OperationShare, domain.Outcome{Err: err})
		return
	}
	if err := h.tokens.Set(h.tokenKey(), token); err != nil {
		h.logger.Error("store sign token", "error", err)
	}
	h.resend(retained, func() (*url.URL, bool) { return h.shareLink(token) }, true)
}

func (h *Handler) handleTokenUnavailable() {
	retained, err := h.machine.TokenUnavailable()
	if err != nil {
		h.logger.Warn("fallback rejected", "error", err)
		h.registry.Resolve(domain.OperationShare, domain.Outcome{Err: err})
		return
	}
	h.resend(retained, h.fallbackShareLink, false)
}

// resend rewrites the retained payload unchanged and opens a new link for it.
// The share stays registered.
func (h *Handler) resend(retained domain.ChannelItems, build func() (*url.URL, bool), universalLinkOnly bool) {
	if err := h.channel.Write(retained); err != nil {
		h.logger.Error("rewrite retained payload", "error", err)
		h.failShare(domain.ErrInvalidMessage)
		return
	}
	link, ok := build()
	if !ok {
		h.failShare(domain.ErrInvalidParameter)
		return
	}
	if err := h.opener.Open(link, universalLinkOnly); err != nil {
		h.logger.Error("open resend link", "error", err)
		h.failShare(domain.ErrUnknown)
		return
	}
	h.logger.Info("share resent", "state", h.machine.State(), "link", link.String())
}

func (h *Handler) failShare(reason domain.Failure) {
	h.machine.Reset()
	h.registry.Resolve(domain.OperationShare, domain.Failed(reason))
}

// failSafe resolves whatever was registered last with ErrUnknown.
func (h *Handler) failSafe(event domain.CallbackEvent, why string) {
	kind, ok := h.registry.ResolveLatest(domain.Failed(domain.ErrUnknown))
	if !ok {
		h.logger.Warn("callback ignored, nothing pending", "reason", why, "url", event.Raw)
		return
	}
	if kind == domain.OperationShare {
		h.machine.Reset()
	}
	h.logger.Warn("callback failed pending operation", "reason", why, "kind", kind, "url", event.Raw)
}
