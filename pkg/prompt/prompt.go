// pkg/prompt/prompt.go - interactive console prompts.

package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer was read.
var ErrNoInput = errors.New("no input available")

// Prompter asks questions on an output stream and reads answers from an input stream.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	sleep func(time.Duration)
}

// New returns a Prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, sleep: time.Sleep}
}

// Console returns a Prompter on the process's standard streams.
func Console() *Prompter {
	return New(os.Stdin, os.Stdout)
}

// Interactive reports whether standard input is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (p *Prompter) readLine(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only "y" and "yes" (any case) confirm.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.readLine(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose asks for one of the allowed answers, compared case-insensitively,
// and returns the answer in lower case.
func (p *Prompter) Choose(question string, allowed []string) (string, error) {
	answer, err := p.readLine(question)
	if err != nil {
		return "", err
	}
	answer = strings.ToLower(answer)
	for _, a := range allowed {
		if strings.ToLower(a) == answer {
			return answer, nil
		}
	}
	return "", fmt.Errorf("invalid selection %q, choose one of %s", answer, strings.Join(allowed, "/"))
}

// WaitForEnter blocks until a line (or end of input) is read.
func (p *Prompter) WaitForEnter(message string) {
	_, _ = p.readLine(message)
}

// Pause prints a countdown notice and sleeps for d. A zero duration does nothing.
func (p *Prompter) Pause(d time.Duration) {
	if d <= 0 {
		return
	}
	fmt.Fprintf(p.out, "\nExiting in %s...\n", d)
	p.sleep(d)
}
