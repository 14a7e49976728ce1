package term

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestLine(t *testing.T) {
	var out bytes.Buffer
	tm := newTerminal(strings.NewReader("  tok-1 \n"), &out, 0)

	got, err := tm.Line("Token: ")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)
	assert.Equal(t, "Token: ", out.String())
}

func TestLineWithoutNewline(t *testing.T) {
	tm := newTerminal(strings.NewReader("last"), &bytes.Buffer{}, 0)
	got, err := tm.Line("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", got)
}

func TestLineEmpty(t *testing.T) {
	tm := newTerminal(strings.NewReader("\n"), &bytes.Buffer{}, 0)
	_, err := tm.Line("> ")
	assert.True(t, xerrors.Is(err, ErrEmpty))

	tm = newTerminal(strings.NewReader(""), &bytes.Buffer{}, 0)
	_, err = tm.Line("> ")
	assert.Error(t, err)
}

func TestSecret(t *testing.T) {
	t.Run("piped input", func(t *testing.T) {
		tm := newTerminal(strings.NewReader("s3cret\n"), &bytes.Buffer{}, 0)
		tm.isTTY = func(int) bool { return false }

		got, err := tm.Secret("Token: ")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
	})

	t.Run("terminal", func(t *testing.T) {
		var out bytes.Buffer
		tm := newTerminal(strings.NewReader(""), &out, 7)
		tm.isTTY = func(fd int) bool { return fd == 7 }
		tm.readPwd = func(int) ([]byte, error) { return []byte("hidden"), nil }

		got, err := tm.Secret("Token: ")
		require.NoError(t, err)
		assert.Equal(t, "hidden", got)
		assert.Equal(t, "Token: \n", out.String())
	})

	t.Run("terminal error", func(t *testing.T) {
		tm := newTerminal(strings.NewReader(""), &bytes.Buffer{}, 7)
		tm.isTTY = func(int) bool { return true }
		tm.readPwd = func(int) ([]byte, error) { return nil, errors.New("tty gone") }

		_, err := tm.Secret("Token: ")
		assert.ErrorContains(t, err, "tty gone")
	})
}
