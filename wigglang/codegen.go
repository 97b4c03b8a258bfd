package wigglang

import (
	"errors"
	"fmt"
	"math"

	"github.com/reusee/wiggler/wiggvm"
)

type Options struct {
	// Strict aborts generation on the first semantic error instead of
	// reporting it and omitting the instruction.
	Strict bool
}

// maxFrameSlots bounds arguments plus locals so every slot fits a signed byte offset.
const maxFrameSlots = 120

var ErrFrameTooLarge = errors.New("too many arguments and locals")

type Program struct {
	Code        []byte
	Symbols     []*Symbol
	Diagnostics []Diagnostic
}

// Proc returns the procedure visible under name, honoring shadowing.
func (p *Program) Proc(name string) (*Symbol, bool) {
	for i := len(p.Symbols) - 1; i >= 0; i-- {
		sym := p.Symbols[i]
		if sym.Name == name && sym.Kind == SymbolProc {
			return sym, true
		}
	}
	return nil, false
}

// Labels maps procedure entry addresses to names.
func (p *Program) Labels() map[uint16]string {
	ret := make(map[uint16]string)
	for _, sym := range p.Symbols {
		if sym.Kind == SymbolProc {
			ret[uint16(sym.Address)] = sym.Name
		}
	}
	return ret
}

// Image packages the program for the machine.
func (p *Program) Image(source string) *wiggvm.Image {
	image := &wiggvm.Image{
		Format: wiggvm.ImageFormat,
		Source: source,
		Code:   p.Code,
	}
	for _, sym := range p.Symbols {
		if sym.Kind != SymbolProc {
			continue
		}
		image.Procs = append(image.Procs, wiggvm.ProcEntry{
			Name:  sym.Name,
			Entry: uint16(sym.Address),
			Args:  sym.Integer,
		})
	}
	return image
}

type Generator struct {
	options     Options
	table       *SymbolTable
	code        []byte
	loops       []int
	frame       *frame
	diagnostics []Diagnostic
}

// frame describes the activation layout of the procedure being generated.
// BP+0 holds the return address and BP-1 the saved BP; arguments sit below,
// the result slot below them, and locals above BP.
type frame struct {
	args   int
	locals int
}

func (f *frame) slot(address int) uint8 {
	if address < f.args {
		return uint8(int8(address - f.args - 1))
	}
	return uint8(int8(address - f.args + 1))
}

func (f *frame) resultSlot() uint8 {
	return uint8(int8(-f.args - 2))
}

func NewGenerator(options Options) *Generator {
	return &Generator{
		options: options,
		table:   NewSymbolTable(),
	}
}

// Generate emits bytecode for a desugared AST.
func Generate(root *Node, options Options) (*Program, error) {
	g := NewGenerator(options)
	if err := g.node(root); err != nil {
		return nil, err
	}
	return g.Program(), nil
}

func (g *Generator) Program() *Program {
	return &Program{
		Code:        g.code,
		Symbols:     g.table.Globals(),
		Diagnostics: g.diagnostics,
	}
}

func (g *Generator) Table() *SymbolTable {
	return g.table
}

func (g *Generator) address() int {
	return len(g.code)
}

func (g *Generator) node(n *Node) error {
	switch n.Kind {

	case NodeTop, NodeExpression:
		return g.children(n.Children)

	case NodePinDef:
		pin := g.table.Create(n.Name, SymbolPin)
		pin.Integer = n.Integer
		pin.Direction = n.Direction

	case NodeProcDef:
		return g.proc(n)

	case NodeArg, NodeVarDef:
		g.table.Create(n.Name, SymbolVariable)

	case NodeSetPinDir:
		sym, err := g.lookup(n, "pin", SymbolPin)
		if err != nil || sym == nil {
			return err
		}
		switch n.Direction {
		case DirInput:
			g.code = wiggvm.EmitByte(g.code, wiggvm.OpSetInput, uint8(sym.Integer))
		case DirOutput:
			g.code = wiggvm.EmitByte(g.code, wiggvm.OpSetOutput, uint8(sym.Integer))
		default:
			return g.report(n, fmt.Errorf("unknown direction %v for pin %s", n.Direction, n.Name))
		}

	case NodeVariable:
		sym, err := g.lookup(n, "variable", SymbolPin, SymbolVariable)
		if err != nil {
			return err
		}
		if sym == nil {
			g.placeholder()
			return nil
		}
		if sym.Kind == SymbolPin {
			g.code = wiggvm.EmitByte(g.code, wiggvm.OpGetPin, uint8(sym.Integer))
			return nil
		}
		g.code = wiggvm.EmitByte(g.code, wiggvm.OpLoad, g.frame.slot(sym.Address))
		if n.HasInteger() {
			g.code = wiggvm.EmitByte(g.code, wiggvm.OpGetBit, uint8(n.Integer))
		}

	case NodeIntLiteral:
		g.code = wiggvm.EmitWord(g.code, wiggvm.OpLit, uint16(n.Integer))

	case NodeRep:
		if len(n.Children) == 0 {
			return nil
		}
		if err := g.node(n.Children[0]); err != nil {
			return err
		}
		g.loops = append(g.loops, g.address())
		return g.statements(n.Children[1:])

	case NodeEndRep:
		if len(g.loops) == 0 {
			return WithPos(errors.New("ENDREP without REP"), n.Pos)
		}
		start := g.loops[len(g.loops)-1]
		g.loops = g.loops[:len(g.loops)-1]
		g.code = wiggvm.Emit(g.code, wiggvm.OpDec)
		g.code = wiggvm.EmitWord(g.code, wiggvm.OpJnz, uint16(start))
		g.code = wiggvm.Emit(g.code, wiggvm.OpPop)
		g.epilogue()

	case NodeCall:
		called, err := g.call(n)
		if err != nil {
			return err
		}
		if !called {
			g.placeholder()
		}

	case NodeAssign:
		if err := g.children(n.Children); err != nil {
			return err
		}
		sym, err := g.lookup(n, "variable", SymbolPin, SymbolVariable)
		if err != nil {
			return err
		}
		if sym == nil {
			// the value is dropped with the store
			g.code = wiggvm.Emit(g.code, wiggvm.OpPop)
			return nil
		}
		switch {
		case sym.Kind == SymbolPin:
			g.code = wiggvm.EmitByte(g.code, wiggvm.OpSetPin, uint8(sym.Integer))
		case n.HasInteger():
			g.code = wiggvm.EmitBytes(g.code, wiggvm.OpSetBit, uint8(n.Integer), g.frame.slot(sym.Address))
		default:
			g.code = wiggvm.EmitByte(g.code, wiggvm.OpStore, g.frame.slot(sym.Address))
		}

	case NodeWait:
		if err := g.children(n.Children); err != nil {
			return err
		}
		g.code = wiggvm.Emit(g.code, wiggvm.OpWait)

	case NodeShiftRight:
		if err := g.children(n.Children); err != nil {
			return err
		}
		g.code = wiggvm.Emit(g.code, wiggvm.OpShr)

	case NodeReturn:
		if err := g.children(n.Children); err != nil {
			return err
		}
		if g.frame == nil {
			return g.report(n, errors.New("RET outside of procedure"))
		}
		g.code = wiggvm.EmitByte(g.code, wiggvm.OpStore, g.frame.resultSlot())

	case NodeIoDirection:
		if err := g.report(n, &SemanticError{
			Name: n.Direction.String(),
			What: "value",
			Err:  ErrKindMismatch,
		}); err != nil {
			return err
		}
		g.placeholder()

	default:
		return WithPos(fmt.Errorf("unexpected node %v", n.Kind), n.Pos)
	}

	return nil
}

func (g *Generator) children(nodes []*Node) error {
	for _, child := range nodes {
		if err := g.node(child); err != nil {
			return err
		}
	}
	return nil
}

// statements generates a statement list; calls used as statements discard their result.
func (g *Generator) statements(nodes []*Node) error {
	for _, child := range nodes {
		if child.Kind != NodeCall {
			if err := g.node(child); err != nil {
				return err
			}
			continue
		}
		called, err := g.call(child)
		if err != nil {
			return err
		}
		if called {
			g.code = wiggvm.Emit(g.code, wiggvm.OpPop)
		}
	}
	return nil
}

func (g *Generator) proc(n *Node) error {
	args := 0
	locals := 0
	for _, child := range n.Children {
		if child.Kind == NodeArg {
			args++
		}
	}
	Walk(n, func(node *Node) {
		if node.Kind == NodeVarDef {
			locals++
		}
	})
	if args+locals > maxFrameSlots || locals > math.MaxUint8 {
		return WithPos(fmt.Errorf("%w in %s", ErrFrameTooLarge, n.Name), n.Pos)
	}

	sym := g.table.Create(n.Name, SymbolProc)
	sym.Integer = args
	sym.Address = g.address()

	g.frame = &frame{
		args:   args,
		locals: locals,
	}
	g.table.EnterScope()
	defer func() {
		g.table.LeaveScope()
		g.frame = nil
	}()

	if locals > 0 {
		g.code = wiggvm.EmitByte(g.code, wiggvm.OpRes, uint8(locals))
	}
	if err := g.statements(n.Children); err != nil {
		return err
	}
	g.epilogue()

	return nil
}

func (g *Generator) epilogue() {
	if g.frame != nil && g.frame.locals > 0 {
		g.code = wiggvm.EmitByte(g.code, wiggvm.OpPopN, uint8(g.frame.locals))
	}
	g.code = wiggvm.Emit(g.code, wiggvm.OpRet)
}

// call emits a call sequence and reports whether the CALL was emitted.
// The caller reserves a zeroed result slot below the arguments and drops
// the arguments after the callee returns, leaving only the result.
func (g *Generator) call(n *Node) (bool, error) {
	sym, err := g.lookup(n, "procedure", SymbolProc)
	if err != nil {
		return false, err
	}
	if sym != nil && sym.Integer != len(n.Children) {
		if err := g.report(n, &SemanticError{
			Name: n.Name,
			What: fmt.Sprintf("%d argument(s), got %d", sym.Integer, len(n.Children)),
			Err:  ErrArity,
		}); err != nil {
			return false, err
		}
		sym = nil
	}

	if sym == nil {
		// arguments are still generated, only the call is dropped
		if err := g.children(n.Children); err != nil {
			return false, err
		}
		if args := len(n.Children); args > 0 {
			g.code = wiggvm.EmitByte(g.code, wiggvm.OpPopN, uint8(args))
		}
		return false, nil
	}

	g.code = wiggvm.EmitWord(g.code, wiggvm.OpLit, 0)
	if err := g.children(n.Children); err != nil {
		return false, err
	}
	g.code = wiggvm.EmitWord(g.code, wiggvm.OpCall, uint16(sym.Address))
	if args := len(n.Children); args > 0 {
		g.code = wiggvm.EmitByte(g.code, wiggvm.OpPopN, uint8(args))
	}
	return true, nil
}

// placeholder stands in for an expression whose value could not be generated.
func (g *Generator) placeholder() {
	g.code = wiggvm.EmitWord(g.code, wiggvm.OpLit, 0)
}

// lookup resolves n.Name to a symbol of one of the wanted kinds.
// A nil symbol with a nil error means the problem was reported as a diagnostic.
func (g *Generator) lookup(n *Node, what string, kinds ...SymbolKind) (*Symbol, error) {
	sym, ok := g.table.Find(n.Name)
	if !ok {
		return nil, g.report(n, &SemanticError{
			Name: n.Name,
			What: what,
			Err:  ErrUnresolved,
		})
	}
	for _, kind := range kinds {
		if sym.Kind == kind {
			if kind == SymbolVariable && g.frame == nil {
				break
			}
			return sym, nil
		}
	}
	return nil, g.report(n, &SemanticError{
		Name: n.Name,
		What: what,
		Err:  ErrKindMismatch,
	})
}

// report records a semantic diagnostic, or returns it as an error in strict mode.
func (g *Generator) report(n *Node, err error) error {
	if g.options.Strict {
		return WithPos(err, n.Pos)
	}
	g.diagnostics = append(g.diagnostics, Diagnostic{
		Kind:    DiagSemantic,
		Pos:     n.Pos,
		Message: err.Error(),
		Err:     err,
	})
	return nil
}
