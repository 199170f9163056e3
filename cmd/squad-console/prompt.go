package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// prompter reads answers from the user. Passwords are read without echo
// when input is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int

	keysOnce sync.Once
	chunks   chan []byte
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// interactive reports whether input is a terminal.
func (p *prompter) interactive() bool {
	return p.fd >= 0
}

// Line prints label and returns the trimmed answer. It returns io.EOF
// when input ends before any text.
func (p *prompter) Line(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password prints label and reads a secret.
func (p *prompter) Password(label string) (string, error) {
	if !p.interactive() {
		line, err := p.Line(label)
		return line, err
	}

	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}
	secret, err := term.ReadPassword(p.fd)
	_, _ = fmt.Fprintln(p.out) // nolint:errcheck
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// Confirm asks a yes/no question defaulting to no.
func (p *prompter) Confirm(question string) bool {
	answer, err := p.Line(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// keys streams raw input chunks for the browse screen. One reader
// goroutine serves every caller for the life of the prompter: a chunk read
// after a screen closed waits for the next screen instead of being lost.
// Line must not be used once keys has been called.
func (p *prompter) keys() <-chan []byte {
	p.keysOnce.Do(func() {
		p.chunks = make(chan []byte)
		go func(ch chan<- []byte) {
			defer close(ch)
			buf := make([]byte, 64)
			for {
				n, err := p.in.Read(buf)
				if n > 0 {
					ch <- append([]byte(nil), buf[:n]...)
				}
				if err != nil {
					return
				}
			}
		}(p.chunks)
	})
	return p.chunks
}
