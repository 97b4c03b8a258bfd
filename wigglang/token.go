package wigglang

import "fmt"

type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	if t.Text == "" {
		return fmt.Sprintf("%d,%d %v", t.Pos.Line, t.Pos.Column, t.Kind)
	}
	return fmt.Sprintf("%d,%d %v ('%s')", t.Pos.Line, t.Pos.Column, t.Kind, t.Text)
}

type TokenKind uint8

const (
	TokenInvalid TokenKind = iota
	TokenIdentifier
	TokenInteger
	TokenEqual
	TokenSemicolon
	TokenComma
	TokenPeriod
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenEOF

	// keywords
	TokenDefine
	TokenPin
	TokenOutput
	TokenInput
	TokenBidir
	TokenProc
	TokenEndProc
	TokenRep
	TokenEndRep
	TokenWait
	TokenShr
	TokenRet
	TokenVar
)

var tokenKindNames = [...]string{
	TokenInvalid:    "INVALID",
	TokenIdentifier: "IDENT",
	TokenInteger:    "INTEGER",
	TokenEqual:      "=",
	TokenSemicolon:  ";",
	TokenComma:      ",",
	TokenPeriod:     ".",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenEOF:        "end of input",
	TokenDefine:     "DEFINE",
	TokenPin:        "PIN",
	TokenOutput:     "OUTPUT",
	TokenInput:      "INPUT",
	TokenBidir:      "BIDIR",
	TokenProc:       "PROC",
	TokenEndProc:    "ENDPROC",
	TokenRep:        "REP",
	TokenEndRep:     "ENDREP",
	TokenWait:       "WAIT",
	TokenShr:        "SHR",
	TokenRet:        "RET",
	TokenVar:        "VAR",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

func (k TokenKind) IsKeyword() bool {
	return k >= TokenDefine && k <= TokenVar
}

// keywords is read-only after initialization.
var keywords = map[string]TokenKind{
	"DEFINE":  TokenDefine,
	"PIN":     TokenPin,
	"OUTPUT":  TokenOutput,
	"INPUT":   TokenInput,
	"BIDIR":   TokenBidir,
	"PROC":    TokenProc,
	"ENDPROC": TokenEndProc,
	"REP":     TokenRep,
	"ENDREP":  TokenEndRep,
	"WAIT":    TokenWait,
	"SHR":     TokenShr,
	"RET":     TokenRet,
	"VAR":     TokenVar,
}

// LookupKeyword reports the keyword kind of an identifier, matching exactly and case-sensitively.
func LookupKeyword(text string) (TokenKind, bool) {
	kind, ok := keywords[text]
	return kind, ok
}
