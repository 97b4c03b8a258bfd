package wigglang

import (
	"strconv"
)

const (
	maxPinNumber = 0xff
	maxBitIndex  = 15
	maxLiteral   = 0xffff
)

type Parser struct {
	tokens  []Token
	idx     int
	matched Token
	eof     Token
}

func NewParser(tokens []Token) *Parser {
	eof := Token{
		Kind: TokenEOF,
		Pos: Pos{
			Line:   1,
			Column: 1,
		},
	}
	if len(tokens) > 0 {
		eof.Pos = tokens[len(tokens)-1].Pos
	}
	return &Parser{
		tokens: tokens,
		eof:    eof,
	}
}

// Parse builds the AST rooted at a Top node.
// On error the returned tree is partial and must not be used.
func Parse(tokens []Token) (*Node, error) {
	return NewParser(tokens).Process()
}

func (p *Parser) Process() (*Node, error) {
	root := NewNode(NodeTop, Pos{Line: 1, Column: 1})

	for p.match(TokenDefine) {
		if err := p.pinDef(root); err != nil {
			return root, err
		}
	}

	for p.match(TokenProc) {
		if err := p.procDef(root); err != nil {
			return root, err
		}
	}

	if !p.atEnd() {
		return root, p.fail("PROC")
	}

	return root, nil
}

func (p *Parser) atEnd() bool {
	return p.idx >= len(p.tokens)
}

func (p *Parser) current() Token {
	if p.atEnd() {
		return p.eof
	}
	return p.tokens[p.idx]
}

func (p *Parser) match(kind TokenKind) bool {
	if p.current().Kind == kind {
		p.matched = p.current()
		p.idx++
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind, expected string) error {
	if p.match(kind) {
		return nil
	}
	return p.fail(expected)
}

func (p *Parser) fail(expected string) error {
	tok := p.current()
	return WithPos(&SyntaxError{
		Expected: expected,
		Got:      tok,
	}, tok.Pos)
}

// integer converts the matched Integer token, bounded by max.
func (p *Parser) integer(max int, expected string) (int, error) {
	tok := p.matched
	n, err := strconv.Atoi(tok.Text)
	if err != nil || n > max {
		return 0, WithPos(&SyntaxError{
			Expected: expected,
			Got:      tok,
			Err:      ErrRange,
		}, tok.Pos)
	}
	return n, nil
}

func (p *Parser) pinDef(root *Node) error {
	node := NewNode(NodePinDef, p.matched.Pos)

	if err := p.expect(TokenIdentifier, "an identifier following DEFINE"); err != nil {
		return err
	}
	node.Name = p.matched.Text

	if err := p.expect(TokenEqual, "'='"); err != nil {
		return err
	}
	if err := p.expect(TokenPin, "'PIN'"); err != nil {
		return err
	}
	if err := p.expect(TokenInteger, "a pin number"); err != nil {
		return err
	}
	pin, err := p.integer(maxPinNumber, "a pin number")
	if err != nil {
		return err
	}
	node.Integer = pin

	switch {
	case p.match(TokenOutput):
		node.Direction = DirOutput
	case p.match(TokenInput):
		node.Direction = DirInput
	case p.match(TokenBidir):
		node.Direction = DirBidir
	default:
		return p.fail("'INPUT', 'OUTPUT' or 'BIDIR'")
	}

	root.Add(node)
	return nil
}

func (p *Parser) procDef(root *Node) error {
	if err := p.expect(TokenIdentifier, "procedure identifier"); err != nil {
		return err
	}
	node := NewNode(NodeProcDef, p.matched.Pos)
	node.Name = p.matched.Text

	if err := p.expect(TokenLParen, "'('"); err != nil {
		return err
	}

	// argument list
	if p.match(TokenIdentifier) {
		p.addArg(node)
		for p.match(TokenComma) {
			if err := p.expect(TokenIdentifier, "argument name identifier"); err != nil {
				return err
			}
			p.addArg(node)
		}
	}

	if err := p.expect(TokenRParen, "')'"); err != nil {
		return err
	}

	if err := p.statements(node); err != nil {
		return err
	}

	if err := p.expect(TokenEndProc, "'ENDPROC'"); err != nil {
		return err
	}

	root.Add(node)
	return nil
}

func (p *Parser) addArg(proc *Node) {
	arg := NewNode(NodeArg, p.matched.Pos)
	arg.Name = p.matched.Text
	proc.Add(arg)
}

func (p *Parser) statements(parent *Node) error {
	for {
		switch {

		case p.match(TokenVar):
			node := NewNode(NodeVarDef, p.matched.Pos)
			if err := p.expect(TokenIdentifier, "variable name identifier"); err != nil {
				return err
			}
			node.Name = p.matched.Text
			parent.Add(node)

		case p.match(TokenRep):
			node := NewNode(NodeRep, p.matched.Pos)
			if err := p.requireExpression(node, "an expression after REP"); err != nil {
				return err
			}
			if err := p.statements(node); err != nil {
				return err
			}
			if err := p.expect(TokenEndRep, "'ENDREP'"); err != nil {
				return err
			}
			node.Add(NewNode(NodeEndRep, p.matched.Pos))
			parent.Add(node)

		case p.match(TokenWait):
			node := NewNode(NodeWait, p.matched.Pos)
			if err := p.requireExpression(node, "an expression after WAIT"); err != nil {
				return err
			}
			parent.Add(node)

		case p.match(TokenRet):
			node := NewNode(NodeReturn, p.matched.Pos)
			if err := p.requireExpression(node, "an expression after RET"); err != nil {
				return err
			}
			parent.Add(node)

		case p.match(TokenIdentifier):
			if err := p.callOrAssign(parent); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

func (p *Parser) callOrAssign(parent *Node) error {
	name := p.matched

	if p.match(TokenLParen) {
		node := NewNode(NodeCall, name.Pos)
		node.Name = name.Text
		if err := p.callArguments(node); err != nil {
			return err
		}
		parent.Add(node)
		return nil
	}

	node := NewNode(NodeAssign, name.Pos)
	node.Name = name.Text

	if p.match(TokenLBracket) {
		bit, err := p.bitIndex()
		if err != nil {
			return err
		}
		node.Integer = bit
	}

	if err := p.expect(TokenEqual, "'='"); err != nil {
		return err
	}
	if err := p.requireExpression(node, "an expression"); err != nil {
		return err
	}

	parent.Add(node)
	return nil
}

// bitIndex parses `n ]` after a matched '['.
func (p *Parser) bitIndex() (int, error) {
	if err := p.expect(TokenInteger, "bit index integer"); err != nil {
		return 0, err
	}
	bit, err := p.integer(maxBitIndex, "bit index 0-15")
	if err != nil {
		return 0, err
	}
	if err := p.expect(TokenRBracket, "']'"); err != nil {
		return 0, err
	}
	return bit, nil
}

// callArguments parses `args )` after a matched '('.
func (p *Parser) callArguments(call *Node) error {
	ok, err := p.expression(call)
	if err != nil {
		return err
	}
	if ok {
		for p.match(TokenComma) {
			if err := p.requireExpression(call, "an expression"); err != nil {
				return err
			}
		}
	}
	return p.expect(TokenRParen, "')'")
}

func (p *Parser) requireExpression(parent *Node, expected string) error {
	ok, err := p.expression(parent)
	if err != nil {
		return err
	}
	if !ok {
		return p.fail(expected)
	}
	return nil
}

// expression reports false without consuming anything when no expression starts here.
func (p *Parser) expression(parent *Node) (bool, error) {
	switch {

	case p.match(TokenIdentifier):
		name := p.matched

		if p.match(TokenLParen) {
			node := NewNode(NodeCall, name.Pos)
			node.Name = name.Text
			if err := p.callArguments(node); err != nil {
				return false, err
			}
			parent.Add(node)
			return true, nil
		}

		node := NewNode(NodeVariable, name.Pos)
		node.Name = name.Text
		if p.match(TokenLBracket) {
			bit, err := p.bitIndex()
			if err != nil {
				return false, err
			}
			node.Integer = bit
		}
		parent.Add(node)
		return true, nil

	case p.match(TokenInteger):
		node := NewNode(NodeIntLiteral, p.matched.Pos)
		n, err := p.integer(maxLiteral, "a 16-bit integer")
		if err != nil {
			return false, err
		}
		node.Integer = n
		parent.Add(node)
		return true, nil

	case p.match(TokenInput):
		node := NewNode(NodeIoDirection, p.matched.Pos)
		node.Direction = DirInput
		parent.Add(node)
		return true, nil

	case p.match(TokenOutput):
		node := NewNode(NodeIoDirection, p.matched.Pos)
		node.Direction = DirOutput
		parent.Add(node)
		return true, nil

	case p.match(TokenShr):
		node := NewNode(NodeShiftRight, p.matched.Pos)
		if err := p.requireExpression(node, "an expression after SHR"); err != nil {
			return false, err
		}
		parent.Add(node)
		return true, nil

	}

	return false, nil
}
