package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/internal/domain"
)

func payload() domain.ChannelItems {
	return domain.ChannelItems{"content": []byte("original")}
}

func TestMachine_NeedsTokenThenRefresh(t *testing.T) {
	m := New()
	m.Sent(payload(), false)
	require.Equal(t, Sent, m.State())
	assert.Nil(t, m.Retained())

	require.NoError(t, m.NeedsToken())
	assert.Equal(t, AwaitingToken, m.State())
	assert.Equal(t, payload(), m.Retained())

	got, err := m.TokenRefreshed()
	require.NoError(t, err)
	assert.Equal(t, payload(), got)
	assert.Equal(t, Resent, m.State())
	assert.Nil(t, m.Retained())
}

func TestMachine_RefreshStraightFromSent(t *testing.T) {
	m := New()
	m.Sent(payload(), false)

	got, err := m.TokenRefreshed()
	require.NoError(t, err)
	assert.Equal(t, payload(), got)
	assert.Equal(t, Resent, m.State())
	assert.Nil(t, m.Retained())
}

func TestMachine_FallbackBranch(t *testing.T) {
	m := New()
	m.Sent(payload(), false)
	require.NoError(t, m.NeedsToken())

	got, err := m.TokenUnavailable()
	require.NoError(t, err)
	assert.Equal(t, payload(), got)
	assert.Equal(t, FallbackSent, m.State())
	assert.Nil(t, m.Retained())
}

func TestMachine_SecondSignalsAreViolations(t *testing.T) {
	tests := []struct {
		name   string
		first  func(m *Machine) error
		second func(m *Machine) error
	}{
		{
			name:   "unavailable after resent",
			first:  func(m *Machine) error { _, err := m.TokenRefreshed(); return err },
			second: func(m *Machine) error { _, err := m.TokenUnavailable(); return err },
		},
		{
			name:   "refresh after resent",
			first:  func(m *Machine) error { _, err := m.TokenRefreshed(); return err },
			second: func(m *Machine) error { _, err := m.TokenRefreshed(); return err },
		},
		{
			name:   "refresh after fallback",
			first:  func(m *Machine) error { _, err := m.TokenUnavailable(); return err },
			second: func(m *Machine) error { _, err := m.TokenRefreshed(); return err },
		},
		{
			name:   "needs token twice",
			first:  func(m *Machine) error { return m.NeedsToken() },
			second: func(m *Machine) error { return m.NeedsToken() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.Sent(payload(), false)
			require.NoError(t, tt.first(m))

			err := tt.second(m)
			assert.ErrorIs(t, err, domain.ErrUnknown)
			assert.Equal(t, Idle, m.State())
			assert.Nil(t, m.Retained())
		})
	}
}

func TestMachine_TokenAlreadyHeld(t *testing.T) {
	m := New()
	m.Sent(payload(), true)

	err := m.NeedsToken()
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	assert.Equal(t, Idle, m.State())

	m.Sent(payload(), true)
	_, err = m.TokenRefreshed()
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestMachine_IdleSignals(t *testing.T) {
	m := New()

	_, err := m.TokenRefreshed()
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = m.TokenUnavailable()
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	assert.ErrorIs(t, m.NeedsToken(), domain.ErrInvalidParameter)
}

func TestMachine_NewShareResets(t *testing.T) {
	m := New()
	m.Sent(payload(), false)
	require.NoError(t, m.NeedsToken())

	next := domain.ChannelItems{"content": []byte("next")}
	m.Sent(next, false)

	assert.Equal(t, Sent, m.State())
	assert.Nil(t, m.Retained())

	got, err := m.TokenRefreshed()
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestMachine_SentCopiesPayload(t *testing.T) {
	m := New()
	p := payload()
	m.Sent(p, false)
	p["content"][0] = 'X'

	got, err := m.TokenRefreshed()
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got["content"])
}
