// Package term reads values, including secrets, from an interactive terminal.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/xerrors"
)

// ErrEmpty is returned when the user enters nothing.
var ErrEmpty = xerrors.New("empty input")

// Terminal prompts on out and reads from in.
type Terminal struct {
	in      *bufio.Reader
	out     io.Writer
	fd      int
	isTTY   func(fd int) bool
	readPwd func(fd int) ([]byte, error)
}

// NewTerminal returns a terminal bound to stdin and stderr.
func NewTerminal() *Terminal {
	return newTerminal(os.Stdin, os.Stderr, int(os.Stdin.Fd()))
}

func newTerminal(in io.Reader, out io.Writer, fd int) *Terminal {
	return &Terminal{
		in:      bufio.NewReader(in),
		out:     out,
		fd:      fd,
		isTTY:   term.IsTerminal,
		readPwd: term.ReadPassword,
	}
}

// Line prompts and returns one trimmed line.
func (t *Terminal) Line(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", xerrors.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrEmpty
	}
	return line, nil
}

// Secret prompts and reads without echo when attached to a terminal. Piped
// input is read as a plain line.
func (t *Terminal) Secret(prompt string) (string, error) {
	if !t.isTTY(t.fd) {
		return t.Line(prompt)
	}
	fmt.Fprint(t.out, prompt)
	b, err := t.readPwd(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", xerrors.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimSpace(string(b))
	if secret == "" {
		return "", ErrEmpty
	}
	return secret, nil
}
