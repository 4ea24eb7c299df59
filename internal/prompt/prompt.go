// Package prompt reads validated answers from an interactive console.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// State is the acceptor state of a field while it is being asked.
type State int

const (
	// Awaiting means no acceptable answer has been read yet.
	Awaiting State = iota
	// Invalid means the last answer was rejected.
	Invalid
	// Valid means an accepted answer was read.
	Valid
)

func (s State) String() string {
	switch s {
	case Awaiting:
		return "awaiting-input"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Field describes one question with its accepted answers.
type Field struct {
	Name     string
	Question string
	Invalid  string
	Valid    []string
}

// Accepts reports whether a normalized answer is in the valid set.
func (f Field) Accepts(answer string) bool {
	for _, v := range f.Valid {
		if v == answer {
			return true
		}
	}
	return false
}

// Normalize trims whitespace and lowercases an answer.
func Normalize(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// Prompter asks questions on an input/output pair.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Acceptor tracks the answers given for one field.
type Acceptor struct {
	field Field
	state State
	value string
}

// NewAcceptor returns an Acceptor in the Awaiting state.
func NewAcceptor(f Field) *Acceptor {
	return &Acceptor{field: f}
}

// Feed normalizes an answer and moves to Valid or Invalid. Once Valid, the
// acceptor ignores further input.
func (a *Acceptor) Feed(answer string) State {
	if a.state == Valid {
		return a.state
	}
	answer = Normalize(answer)
	if a.field.Accepts(answer) {
		a.state = Valid
		a.value = answer
	} else {
		a.state = Invalid
	}
	return a.state
}

// State returns the current state.
func (a *Acceptor) State() State {
	return a.state
}

// Value returns the accepted answer, or "" before one is read.
func (a *Acceptor) Value() string {
	return a.value
}

// Ask repeats the field's question until an accepted answer is read and
// returns it normalized. It returns io.EOF when input ends first.
func (p *Prompter) Ask(f Field) (string, error) {
	acc := NewAcceptor(f)
	for acc.State() != Valid {
		answer, err := p.Line(f.Question)
		if err != nil {
			return "", err
		}
		if acc.Feed(answer) == Invalid {
			if _, err := fmt.Fprintln(p.out, f.Invalid); err != nil {
				return "", err
			}
		}
	}
	return acc.Value(), nil
}

// Confirm asks a yes/no question. Only "yes" is affirmative.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(question)
	if err != nil {
		return false, err
	}
	return Normalize(answer) == "yes", nil
}

// Line prints the question and reads one line of input. A final line
// without a newline is returned before io.EOF.
func (p *Prompter) Line(question string) (string, error) {
	if question != "" {
		if _, err := fmt.Fprint(p.out, question); err != nil {
			return "", err
		}
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}
