package messaging

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader reads one line of input after showing prompt. It returns io.EOF
// when input has ended.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Input is a LineReader that owns a terminal or stream.
type Input interface {
	LineReader
	io.Closer
}

// NewInput returns a readline-backed input when in is a terminal, and a
// plain line reader otherwise so piped input works.
func NewInput(in io.Reader, out io.Writer) (Input, error) {
	if f, ok := in.(*os.File); ok && readline.IsTerminal(int(f.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          promptMessage,
			Stdin:           f,
			Stdout:          out,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create readline instance: %w", err)
		}
		return &terminalInput{rl: rl}, nil
	}
	return NewStreamInput(in, out), nil
}

type terminalInput struct {
	rl *readline.Instance
}

// ReadLine maps Ctrl+C to end of input, like Ctrl+D.
func (t *terminalInput) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (t *terminalInput) Close() error {
	return t.rl.Close()
}

type streamInput struct {
	reader *bufio.Reader
	out    io.Writer
	closer io.Closer
}

// NewStreamInput reads newline-terminated lines of any length from in.
// Closing it closes in when in is an io.Closer.
func NewStreamInput(in io.Reader, out io.Writer) Input {
	s := &streamInput{reader: bufio.NewReader(in), out: out}
	if c, ok := in.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *streamInput) ReadLine(prompt string) (string, error) {
	if s.out != nil && prompt != "" {
		_, _ = fmt.Fprint(s.out, prompt)
	}
	line, err := s.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *streamInput) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
