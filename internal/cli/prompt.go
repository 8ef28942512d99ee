package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// errConfirmationRequired is returned when a destructive command cannot
// ask for confirmation because input ended.
var errConfirmationRequired = errors.New("confirmation required: re-run with --yes")

// errAborted is returned when the user answered no.
var errAborted = errors.New("aborted")

// fder is satisfied by *os.File.
type fder interface {
	Fd() uintptr
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// prompter reads answers from one buffered reader so consecutive questions
// do not lose input.
type prompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, r: bufio.NewReader(in), out: out}
}

// line asks for one line. An empty answer returns def.
func (p *prompter) line(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	input, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF && def != "" {
			return def, nil
		}
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// secret asks for a value without echo when input is a terminal.
func (p *prompter) secret(question string) (string, error) {
	if f, ok := p.in.(fder); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, question)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.line(strings.TrimSuffix(strings.TrimSpace(question), ":"), "")
}

// yesNo asks a y/N question.
func (p *prompter) yesNo(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	input, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF {
			return false, errConfirmationRequired
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes", "s", "si", "sí":
		return true, nil
	default:
		return false, nil
	}
}

// confirm asks before a destructive or bulk action. --yes skips the
// question.
func confirm(in io.Reader, out io.Writer, question string) error {
	return newPrompter(in, out).confirm(question)
}

func (p *prompter) confirm(question string) error {
	if assumeYes {
		return nil
	}
	ok, err := p.yesNo(question)
	if err != nil {
		return err
	}
	if !ok {
		return errAborted
	}
	return nil
}

// readSecret reads one hidden value, used for proxy passwords.
func readSecret(in io.Reader, out io.Writer, question string) (string, error) {
	return newPrompter(in, out).secret(question)
}
