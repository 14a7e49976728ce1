// Package escalation tracks a share that the peer cannot complete until the host
// presents a signed token, and hands the original payload back for resubmission.
package escalation

import (
	"fmt"
	"sync"

	"handoff/internal/domain"
)

// State of one share attempt.
type State int

const (
	Idle State = iota
	Sent
	AwaitingToken
	Resent
	FallbackSent
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sent:
		return "sent"
	case AwaitingToken:
		return "awaiting_token"
	case Resent:
		return "resent"
	case FallbackSent:
		return "fallback_sent"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Machine is the per-handler escalation state. Any method returning a non-nil
// error has already moved the machine back to Idle; the caller resolves the
// share with that error.
type Machine struct {
	mu        sync.Mutex
	state     State
	tokenHeld bool
	candidate domain.ChannelItems
	retained  domain.ChannelItems
}

// New returns a machine in Idle.
func New() *Machine {
	return &Machine{}
}

// Sent records a freshly dispatched share. payload is what was written to the
// shared channel; tokenHeld tells whether the launch link already carried a token.
func (m *Machine) Sent(payload domain.ChannelItems, tokenHeld bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Sent
	m.tokenHeld = tokenHeld
	m.candidate = payload.Clone()
	m.retained = nil
}

// NeedsToken handles the peer reporting that the share requires a signed token.
func (m *Machine) NeedsToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.needsTokenLocked()
}

func (m *Machine) needsTokenLocked() error {
	switch m.state {
	case Sent:
		if m.tokenHeld {
			m.resetLocked()
			return domain.ErrInvalidParameter
		}
		m.retained = m.candidate
		m.candidate = nil
		m.state = AwaitingToken
		return nil
	case Idle:
		m.resetLocked()
		return domain.ErrInvalidParameter
	default:
		m.resetLocked()
		return domain.ErrUnknown
	}
}

// TokenRefreshed handles a token-refresh callback and returns the payload to
// resubmit with the new token. The retained payload is cleared.
func (m *Machine) TokenRefreshed() (domain.ChannelItems, error) {
	return m.release(Resent)
}

// TokenUnavailable handles the peer reporting that no token can be obtained and
// returns the payload to resubmit through the fallback link.
func (m *Machine) TokenUnavailable() (domain.ChannelItems, error) {
	return m.release(FallbackSent)
}

func (m *Machine) release(next State) (domain.ChannelItems, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Sent {
		if err := m.needsTokenLocked(); err != nil {
			return nil, err
		}
	}

	switch m.state {
	case AwaitingToken:
		payload := m.retained
		m.retained = nil
		m.state = next
		return payload, nil
	case Idle:
		m.resetLocked()
		return nil, domain.ErrInvalidParameter
	default:
		m.resetLocked()
		return nil, domain.ErrUnknown
	}
}

// Reset returns the machine to Idle, dropping any retained payload.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Machine) resetLocked() {
	m.state = Idle
	m.tokenHeld = false
	m.candidate = nil
	m.retained = nil
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Retained returns a copy of the payload kept for resubmission, if any.
func (m *Machine) Retained() domain.ChannelItems {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retained.Clone()
}
