package wechat

import (
	"net/url"

	"handoff/internal/core/launch"
)

const (
	peerHost       = "help.wechat.com"
	fallbackScheme = "weixin"
	oauthScope     = "snsapi_userinfo"
)

// generalQuery returns the parameters every universal link carries, or false when
// the host identity cannot be resolved.
func (h *Handler) generalQuery() (url.Values, bool) {
	if h.cfg.BundleID == "" {
		return nil, false
	}
	q := url.Values{}
	q.Set("wechat_app_bundleId", h.cfg.BundleID)
	q.Set("wechat_auth_context_id", h.contextID())
	return q, true
}

// shareLink targets the peer's sendreq page. token is appended when non-empty.
func (h *Handler) shareLink(token string) (*url.URL, bool) {
	q, ok := h.generalQuery()
	if !ok {
		return nil, false
	}
	if token != "" {
		q.Set("wechat_auth_token", token)
	}
	return launch.Link("https", peerHost, "/app/"+h.cfg.AppID+"/sendreq/", q), true
}

func (h *Handler) oauthLink() (*url.URL, bool) {
	q, ok := h.generalQuery()
	if !ok {
		return nil, false
	}
	q.Set("scope", oauthScope)
	return launch.Link("https", peerHost, "/app/"+h.cfg.AppID+"/auth/", q), true
}

// fallbackShareLink is the custom-scheme link used when no sign token can be obtained.
func (h *Handler) fallbackShareLink() (*url.URL, bool) {
	if h.cfg.BundleID == "" {
		return nil, false
	}
	q := url.Values{}
	q.Set("wechat_app_bundleId", h.cfg.BundleID)
	return launch.Link(fallbackScheme, "app", "/"+h.cfg.AppID+"/sendreq/", q), true
}
