package domain

import (
	"fmt"
	"net/url"
)

// CallbackSource tells how the peer handed control back.
type CallbackSource int

const (
	// SourceURL is a custom-scheme URL open.
	SourceURL CallbackSource = iota
	// SourceActivity is a "continue user activity" event carrying a web URL.
	SourceActivity
)

func (s CallbackSource) String() string {
	switch s {
	case SourceURL:
		return "url"
	case SourceActivity:
		return "activity"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// CallbackEvent is an inbound return event reduced to the shape the routers match on.
type CallbackEvent struct {
	Source CallbackSource
	Scheme string
	Host   string
	Path   string
	Query  url.Values
	Raw    string
}

// NewURLEvent reduces a URL-open callback.
func NewURLEvent(u *url.URL) CallbackEvent {
	return newEvent(SourceURL, u)
}

// NewActivityEvent reduces a continue-activity callback carrying a web page URL.
func NewActivityEvent(webpageURL *url.URL) CallbackEvent {
	return newEvent(SourceActivity, webpageURL)
}

// ParseCallback parses raw and reduces it to an event of the given source.
func ParseCallback(raw string, source CallbackSource) (CallbackEvent, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return CallbackEvent{}, fmt.Errorf("parse callback url: %w", err)
	}
	return newEvent(source, u), nil
}

func newEvent(source CallbackSource, u *url.URL) CallbackEvent {
	if u == nil {
		return CallbackEvent{Source: source, Query: url.Values{}}
	}
	return CallbackEvent{
		Source: source,
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
		Query:  u.Query(),
		Raw:    u.String(),
	}
}

// QueryValue returns the first value of a query item and whether it was present and non-empty.
func (e CallbackEvent) QueryValue(name string) (string, bool) {
	v := e.Query.Get(name)
	return v, v != ""
}
