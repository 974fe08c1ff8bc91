// Package prompt handles the interactive terminal: plain questions, masked
// password entry, and yes/no confirmations.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrInvalidResponse means a confirmation got an answer that is neither yes
// nor no. Callers treat it as fatal rather than re-asking.
var ErrInvalidResponse = errors.New("not a valid response")

// Terminal prompts on a reader/writer pair, normally stdin/stdout.
type Terminal struct {
	in  io.Reader
	out io.Writer
	r   *bufio.Reader
}

// NewTerminal creates a Terminal on stdin/stdout.
func NewTerminal() *Terminal {
	return New(os.Stdin, os.Stdout)
}

// New creates a Terminal on arbitrary streams, mainly for tests.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, r: bufio.NewReader(in)}
}

// Ask prints message and returns one line of input.
func (t *Terminal) Ask(message string) (string, error) {
	if _, err := fmt.Fprint(t.out, message); err != nil {
		return "", err
	}
	line, err := t.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AskSecret prints message and reads a line without echoing it. When stdin is
// not a terminal it falls back to a plain read.
func (t *Terminal) AskSecret(message string) (string, error) {
	if _, err := fmt.Fprint(t.out, message); err != nil {
		return "", err
	}

	f, ok := t.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		line, err := t.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(secret), nil
}

// Confirm asks message and interprets the answer. Accepted answers are
// y/yes/n/no in any case; anything else is an error, which callers treat as
// fatal.
func (t *Terminal) Confirm(message string) (bool, error) {
	answer, err := t.Ask(message)
	if err != nil {
		return false, err
	}
	return ParseResponse(answer)
}

// ParseResponse maps a confirmation answer to a decision.
func ParseResponse(answer string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%q: %w", answer, ErrInvalidResponse)
	}
}
