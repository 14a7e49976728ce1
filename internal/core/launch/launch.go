// Package launch assembles the outbound links that switch to a peer app.
package launch

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ContextIDFunc produces a per-attempt correlation id.
type ContextIDFunc func() string

// NewContextID derives an opaque id from the current timestamp. A random UUID is
// mixed in so two attempts within the same clock tick still differ.
func NewContextID() string {
	ts := strconv.FormatFloat(float64(time.Now().UnixNano())/1e9, 'f', 6, 64)
	sum := sha1.Sum([]byte(ts + ":" + uuid.NewString()))
	return hex.EncodeToString(sum[:])
}

// NewRequestID returns an upper-case UUID string, the form peers echo back verbatim.
func NewRequestID() string {
	return uuid.New().String()
}

// Link builds a URL from a fixed template and query parameters.
// Query keys are emitted in sorted order.
func Link(scheme, host, path string, query url.Values) *url.URL {
	u := &url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   path,
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}
