package domain

import "errors"

// Failure is a normalized reason a share or oauth request did not succeed.
type Failure string

func (f Failure) Error() string { return string(f) }

const (
	// ErrMissingApplication means the peer app is not installed.
	ErrMissingApplication Failure = "missing application"
	// ErrUnsupportedApplication means the peer is installed but lacks the handshake.
	ErrUnsupportedApplication Failure = "unsupported application"
	// ErrUnsupportedMessage means the message and endpoint combination is not allowed.
	ErrUnsupportedMessage Failure = "unsupported message"
	// ErrInvalidParameter means identity or context for a link could not be built.
	ErrInvalidParameter Failure = "invalid parameter"
	// ErrInvalidMessage means the encoded payload was rejected at dispatch time.
	ErrInvalidMessage Failure = "invalid message"
	// ErrUserCancelled means the peer reported that the user aborted.
	ErrUserCancelled Failure = "user cancelled"
	// ErrUnknown covers everything else, including malformed callbacks.
	ErrUnknown Failure = "unknown"
)

// Outcome is the single result delivered to the caller of a share or oauth request.
// Err is nil on success; Parameters is only populated by oauth.
type Outcome struct {
	Parameters map[string]string
	Err        error
}

// Completion receives the outcome of a request.
type Completion func(Outcome)

// Succeeded builds a successful outcome.
func Succeeded(parameters map[string]string) Outcome {
	return Outcome{Parameters: parameters}
}

// Failed builds a failed outcome.
func Failed(reason Failure) Outcome {
	return Outcome{Err: reason}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Err == nil }

// Reason extracts the failure reason; any error that is not a Failure maps to ErrUnknown.
func (o Outcome) Reason() Failure {
	if o.Err == nil {
		return ""
	}
	var f Failure
	if errors.As(o.Err, &f) {
		return f
	}
	return ErrUnknown
}

// OauthInfo keys returned in successful oauth outcomes.
const (
	OauthCode           = "code"
	OauthAccessToken    = "access_token"
	OauthExpirationDate = "expiration_date"
	OauthRefreshToken   = "refresh_token"
	OauthUserID         = "user_id"
)

// CompactParameters drops empty values and returns nil when nothing is left.
func CompactParameters(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
