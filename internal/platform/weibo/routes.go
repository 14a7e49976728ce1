package weibo

import (
	"strings"

	"handoff/internal/domain"
)

const responseHost = "response"

func (h *Handler) universalBase() string {
	return strings.TrimSuffix(h.cfg.UniversalLink.Path, "/")
}

// callbackScheme is the URL scheme the peer returns on, "wb" followed by the app number.
func (h *Handler) callbackScheme() string {
	return "wb" + appNumber(h.cfg.AppID)
}

// isGeneric reports whether event is the generic return; weibo has no other route.
func (h *Handler) isGeneric(event domain.CallbackEvent) bool {
	switch event.Source {
	case domain.SourceURL:
		return event.Host == responseHost && event.Path == ""
	case domain.SourceActivity:
		return event.Path == h.universalBase()+"/weibosdk/response"
	default:
		return false
	}
}

// Owns reports whether event is addressed to this app.
func (h *Handler) Owns(event domain.CallbackEvent) bool {
	switch event.Source {
	case domain.SourceURL:
		return strings.EqualFold(event.Scheme, h.callbackScheme())
	case domain.SourceActivity:
		return strings.EqualFold(event.Host, h.cfg.UniversalLink.Host) &&
			strings.HasPrefix(event.Path, h.universalBase()+"/weibosdk/")
	default:
		return false
	}
}
