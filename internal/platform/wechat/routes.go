package wechat

import (
	"strings"

	"handoff/internal/domain"
)

type route int

const (
	routeUnknown route = iota
	routeGeneric
	routeOauthCode
	routeTokenRefresh
	routeTokenUnavailable
)

func (r route) String() string {
	switch r {
	case routeGeneric:
		return "generic"
	case routeOauthCode:
		return "oauth_code"
	case routeTokenRefresh:
		return "token_refresh"
	case routeTokenUnavailable:
		return "token_unavailable"
	default:
		return "unknown"
	}
}

var urlRoutes = map[string]route{
	"resendContextReqByScheme": routeTokenUnavailable,
	"platformId=wechat":        routeGeneric,
	"oauth":                    routeOauthCode,
	"":                         routeGeneric,
}

// activityBase is the path prefix under which the peer continues activities for this app.
func (h *Handler) activityBase() string {
	return strings.TrimSuffix(h.cfg.UniversalLink.Path, "/") + "/" + h.cfg.AppID
}

func (h *Handler) route(event domain.CallbackEvent) route {
	switch event.Source {
	case domain.SourceURL:
		if event.Path != "" {
			return routeUnknown
		}
		if r, ok := urlRoutes[event.Host]; ok {
			return r
		}
	case domain.SourceActivity:
		base := h.activityBase()
		switch event.Path {
		case base + "/refreshToken":
			return routeTokenRefresh
		case base + "/":
			return routeGeneric
		case base + "/oauth":
			return routeOauthCode
		}
	}
	return routeUnknown
}

// Owns reports whether event is addressed to this app: a URL open on the app's
// callback scheme, or an activity under its universal link.
func (h *Handler) Owns(event domain.CallbackEvent) bool {
	switch event.Source {
	case domain.SourceURL:
		return strings.EqualFold(event.Scheme, h.cfg.AppID)
	case domain.SourceActivity:
		return strings.EqualFold(event.Host, h.cfg.UniversalLink.Host) &&
			strings.HasPrefix(event.Path, h.activityBase()+"/")
	default:
		return false
	}
}
