package wigglang

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyntax       = errors.New("syntax error")
	ErrUnresolved   = errors.New("unresolved identifier")
	ErrKindMismatch = errors.New("symbol kind mismatch")
	ErrArity        = errors.New("argument count mismatch")
	ErrRange        = errors.New("integer out of range")
)

type SyntaxError struct {
	Expected string
	Got      Token
	Err      error
}

func (s *SyntaxError) Error() string {
	if s.Err != nil && s.Err != ErrSyntax {
		return fmt.Sprintf("%v: %s", s.Err, s.Got.Text)
	}
	got := s.Got.Kind.String()
	if s.Got.Kind == TokenIdentifier || s.Got.Kind == TokenInteger {
		got = fmt.Sprintf("%v %q", s.Got.Kind, s.Got.Text)
	}
	return fmt.Sprintf("expected %s, got %s", s.Expected, got)
}

func (s *SyntaxError) Unwrap() []error {
	if s.Err == nil || s.Err == ErrSyntax {
		return []error{ErrSyntax}
	}
	return []error{ErrSyntax, s.Err}
}

type SemanticError struct {
	Name string
	What string
	Err  error
}

func (s *SemanticError) Error() string {
	switch s.Err {
	case ErrUnresolved:
		return fmt.Sprintf("unknown %s %s", s.What, s.Name)
	case ErrKindMismatch:
		return fmt.Sprintf("%s is not a %s", s.Name, s.What)
	case ErrArity:
		return fmt.Sprintf("%s expects %s", s.Name, s.What)
	}
	return fmt.Sprintf("%s: %v", s.Name, s.Err)
}

func (s *SemanticError) Unwrap() error {
	return s.Err
}

type PosError struct {
	Err    error
	Pos    Pos
	Source *Source
}

func (p PosError) Error() string {
	if p.Source == nil {
		return fmt.Sprintf("line %d: %s", p.Pos.Line, p.Err.Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at %s:%d:%d\n", p.Err.Error(), p.Source.Name, p.Pos.Line, p.Pos.Column)

	idx := p.Pos.Line - 1
	if idx >= 0 && idx < len(p.Source.Lines) {
		line := p.Source.Lines[idx]
		sb.WriteString(line)
		sb.WriteString("\n")
		col := p.Pos.Column - 1
		for i, r := range []rune(line) {
			if i >= col {
				break
			}
			if r == '\t' {
				sb.WriteString("\t")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("^\n")
	}

	return sb.String()
}

func (p PosError) Unwrap() error {
	return p.Err
}

func WithPos(err error, pos Pos) error {
	if err == nil {
		return nil
	}
	var posErr PosError
	if errors.As(err, &posErr) {
		return err
	}
	return PosError{
		Err: err,
		Pos: pos,
	}
}

// WithSource attaches source text to a positioned error for caret rendering.
func WithSource(err error, src *Source) error {
	var posErr PosError
	if !errors.As(err, &posErr) || posErr.Source != nil {
		return err
	}
	posErr.Source = src
	return posErr
}

type DiagnosticKind uint8

const (
	DiagLexical DiagnosticKind = iota + 1
	DiagSemantic
)

func (d DiagnosticKind) String() string {
	switch d {
	case DiagLexical:
		return "lexical"
	case DiagSemantic:
		return "semantic"
	}
	return "unknown"
}

// Diagnostic is a non-fatal report; processing continued after it was recorded.
type Diagnostic struct {
	Kind    DiagnosticKind
	Pos     Pos
	Message string
	Err     error
}

func (d Diagnostic) String() string {
	if !d.Pos.IsValid() {
		return d.Message
	}
	return fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message)
}
