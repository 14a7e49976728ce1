package weibo

import (
	"net/url"

	"handoff/internal/core/launch"
)

// requestLink targets the peer's SDK request page for the given request id.
func (h *Handler) requestLink(requestID string) (*url.URL, bool) {
	if h.cfg.BundleID == "" {
		return nil, false
	}
	q := url.Values{}
	q.Set("lfid", h.cfg.BundleID)
	q.Set("luicode", "10000360")
	q.Set("newVersion", sdkShortVersion)
	q.Set("objId", requestID)
	q.Set("sdkversion", sdkVersion)
	q.Set("urltype", "link")
	return launch.Link("https", "open.weibo.com", "/weibosdk/request", q), true
}
