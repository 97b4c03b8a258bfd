package wigglang

import "fmt"

type SymbolKind uint8

const (
	SymbolUnknown SymbolKind = iota
	SymbolPin                // global scope only
	SymbolVariable           // procedure scopes only
	SymbolConstant
	SymbolProc
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolPin:
		return "pin"
	case SymbolVariable:
		return "variable"
	case SymbolConstant:
		return "constant"
	case SymbolProc:
		return "procedure"
	}
	return "unknown"
}

type Symbol struct {
	Kind      SymbolKind
	Integer   int // pin number, or argument count for procedures
	Address   int // frame slot, or entry address for procedures
	Name      string
	Direction IODirection
	Level     int
}

func (s *Symbol) String() string {
	switch s.Kind {
	case SymbolPin:
		return fmt.Sprintf("%s %s pin=%d dir=%v", s.Kind, s.Name, s.Integer, s.Direction)
	case SymbolProc:
		return fmt.Sprintf("%s %s args=%d entry=%d", s.Kind, s.Name, s.Integer, s.Address)
	}
	return fmt.Sprintf("%s %s address=%d level=%d", s.Kind, s.Name, s.Address, s.Level)
}

type Scope struct {
	Level   int
	address int
	symbols []*Symbol
}

// find returns the most recently created match.
func (s *Scope) find(name string) (*Symbol, bool) {
	for i := len(s.symbols) - 1; i >= 0; i-- {
		if s.symbols[i].Name == name {
			return s.symbols[i], true
		}
	}
	return nil, false
}

// SymbolTable is a stack of scopes; the global scope at level 0 is never popped.
type SymbolTable struct {
	scopes []*Scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		scopes: []*Scope{
			{Level: 0},
		},
	}
}

func (t *SymbolTable) current() *Scope {
	return t.scopes[len(t.scopes)-1]
}

func (t *SymbolTable) Level() int {
	return t.current().Level
}

// Create inserts a symbol into the innermost scope at the scope's next address.
// The returned handle is invalid once its scope is left.
func (t *SymbolTable) Create(name string, kind SymbolKind) *Symbol {
	scope := t.current()
	sym := &Symbol{
		Kind:    kind,
		Integer: NoInteger,
		Address: scope.address,
		Name:    name,
		Level:   scope.Level,
	}
	scope.address++
	scope.symbols = append(scope.symbols, sym)
	return sym
}

func (t *SymbolTable) Find(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].find(name); ok {
			return sym, true
		}
	}
	return nil, false
}

func (t *SymbolTable) EnterScope() {
	t.scopes = append(t.scopes, &Scope{
		Level: t.Level() + 1,
	})
}

func (t *SymbolTable) LeaveScope() {
	if len(t.scopes) == 1 {
		panic("leaving global scope")
	}
	last := len(t.scopes) - 1
	t.scopes[last] = nil
	t.scopes = t.scopes[:last]
}

// Globals returns the level 0 symbols in creation order.
func (t *SymbolTable) Globals() []*Symbol {
	ret := make([]*Symbol, len(t.scopes[0].symbols))
	copy(ret, t.scopes[0].symbols)
	return ret
}
