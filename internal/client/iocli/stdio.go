package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type Stdio struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// NewStdio работает с os.Stdin и os.Stdout
func NewStdio() IO {
	fd := int(os.Stdin.Fd())
	return &Stdio{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		fd:     fd,
		isTerm: term.IsTerminal(fd),
	}
}

// NewStream читает из r и пишет в w; пароль вводится обычной строкой.
func NewStream(r io.Reader, w io.Writer) IO {
	return &Stdio{in: bufio.NewReader(r), out: w}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	if !s.isTerm {
		return s.readLine()
	}
	pwBytes, err := term.ReadPassword(s.fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

func (s *Stdio) readLine() (string, error) {
	input, err := s.in.ReadString('\n')
	// последняя строка без перевода строки тоже считается вводом
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
