package wigglang

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type lexState uint8

const (
	stateIdle lexState = iota
	stateIdentifier
	stateInteger
	stateCharLiteralOpen
	stateCharLiteralClose
)

type Lexer struct {
	source *bufio.Reader
	state  lexState

	text        strings.Builder
	charLiteral rune

	currPos Pos
	prevPos Pos

	tokens      []Token
	diagnostics []Diagnostic
}

func NewLexer(source io.Reader) *Lexer {
	return &Lexer{
		source: bufio.NewReader(source),
		currPos: Pos{
			Line:   1,
			Column: 1,
		},
	}
}

// Lex tokenizes the whole input with a fresh lexer.
func Lex(source io.Reader) ([]Token, []Diagnostic, error) {
	l := NewLexer(source)
	tokens, err := l.Process()
	return tokens, l.Diagnostics(), err
}

func (l *Lexer) Diagnostics() []Diagnostic {
	return l.diagnostics
}

func (l *Lexer) readRune() (rune, error) {
	r, _, err := l.source.ReadRune()
	if err != nil {
		return 0, err
	}

	l.prevPos = l.currPos
	if r == '\n' {
		l.currPos.Line++
		l.currPos.Column = 1
	} else {
		l.currPos.Column++
	}

	return r, nil
}

func (l *Lexer) unreadRune() {
	l.source.UnreadRune()
	l.currPos = l.prevPos
}

// Process consumes the entire input and returns the token stream.
func (l *Lexer) Process() ([]Token, error) {
	for {
		r, err := l.readRune()
		if err == io.EOF {
			l.finish()
			return l.tokens, nil
		}
		if err != nil {
			return nil, err
		}
		if err := l.step(r); err != nil {
			return nil, err
		}
	}
}

func (l *Lexer) step(r rune) error {
	switch l.state {

	case stateIdle:
		switch {
		case isBlank(r) || isEOL(r):
		case isAlpha(r):
			l.state = stateIdentifier
			l.text.WriteRune(r)
		case isDigit(r):
			l.state = stateInteger
			l.text.WriteRune(r)
		case r == '\'':
			l.state = stateCharLiteralOpen
		case r == '#':
			return l.skipComment()
		default:
			if kind, ok := punctuation(r); ok {
				l.emit(kind, "")
			} else {
				l.report(fmt.Sprintf("unexpected character %q", r))
			}
		}

	case stateIdentifier:
		if isAlphaNum(r) {
			l.text.WriteRune(r)
			return nil
		}
		l.unreadRune()
		l.emitIdentifier()

	case stateInteger:
		if isDigit(r) {
			l.text.WriteRune(r)
			return nil
		}
		l.unreadRune()
		l.emitText(TokenInteger)

	case stateCharLiteralOpen:
		l.charLiteral = r
		l.state = stateCharLiteralClose

	case stateCharLiteralClose:
		if r == '\'' {
			l.emit(TokenInteger, strconv.Itoa(int(l.charLiteral)))
		} else {
			l.report(fmt.Sprintf("unterminated character literal '%c", l.charLiteral))
		}
		l.state = stateIdle

	}
	return nil
}

func (l *Lexer) finish() {
	switch l.state {
	case stateIdentifier:
		l.emitIdentifier()
	case stateInteger:
		l.emitText(TokenInteger)
	case stateCharLiteralOpen, stateCharLiteralClose:
		l.report("unterminated character literal at end of input")
	}
	l.state = stateIdle
}

func (l *Lexer) skipComment() error {
	for {
		r, err := l.readRune()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if isEOL(r) {
			return nil
		}
	}
}

func (l *Lexer) emit(kind TokenKind, text string) {
	l.tokens = append(l.tokens, Token{
		Kind: kind,
		Text: text,
		Pos:  l.currPos,
	})
}

func (l *Lexer) emitText(kind TokenKind) {
	l.emit(kind, l.text.String())
	l.text.Reset()
	l.state = stateIdle
}

func (l *Lexer) emitIdentifier() {
	text := l.text.String()
	if kind, ok := LookupKeyword(text); ok {
		l.text.Reset()
		l.state = stateIdle
		l.emit(kind, "")
		return
	}
	l.emitText(TokenIdentifier)
}

func (l *Lexer) report(msg string) {
	l.diagnostics = append(l.diagnostics, Diagnostic{
		Kind:    DiagLexical,
		Pos:     l.currPos,
		Message: msg,
	})
}

func punctuation(r rune) (TokenKind, bool) {
	switch r {
	case '=':
		return TokenEqual, true
	case ';':
		return TokenSemicolon, true
	case ',':
		return TokenComma, true
	case '.':
		return TokenPeriod, true
	case '(':
		return TokenLParen, true
	case ')':
		return TokenRParen, true
	case '[':
		return TokenLBracket, true
	case ']':
		return TokenRBracket, true
	}
	return TokenInvalid, false
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

func isEOL(r rune) bool {
	return r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return r >= 'A' && r <= 'Z' ||
		r >= 'a' && r <= 'z' ||
		r == '_'
}

func isAlphaNum(r rune) bool {
	return isDigit(r) || isAlpha(r)
}
