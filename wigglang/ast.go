package wigglang

import (
	"fmt"
	"io"
	"strings"
)

type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeTop
	NodePinDef
	NodeProcDef
	NodeCall
	NodeShiftRight
	NodeIntLiteral
	NodeIoDirection
	NodeVariable
	NodeExpression
	NodeAssign
	NodeWait
	NodeRep
	NodeEndRep
	NodeReturn
	NodeVarDef
	NodeArg
	NodeSetPinDir
)

var nodeKindNames = [...]string{
	NodeInvalid:     "INVALID",
	NodeTop:         "TOP",
	NodePinDef:      "PINDEF",
	NodeProcDef:     "PROCDEF",
	NodeCall:        "CALL",
	NodeShiftRight:  "SHR",
	NodeIntLiteral:  "INT",
	NodeIoDirection: "IODIR",
	NodeVariable:    "VARIABLE",
	NodeExpression:  "EXPRESSION",
	NodeAssign:      "ASSIGN",
	NodeWait:        "WAIT",
	NodeRep:         "REP",
	NodeEndRep:      "ENDREP",
	NodeReturn:      "RETURN",
	NodeVarDef:      "VARDEF",
	NodeArg:         "ARG",
	NodeSetPinDir:   "SETPINDIR",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "???"
}

type IODirection uint8

const (
	DirUnknown IODirection = iota
	DirInput
	DirOutput
	DirBidir
)

func (d IODirection) String() string {
	switch d {
	case DirInput:
		return "INPUT"
	case DirOutput:
		return "OUTPUT"
	case DirBidir:
		return "BIDIR"
	}
	return "UNKNOWN"
}

// NoInteger marks an absent integer payload.
const NoInteger = -1

// Node owns its children exclusively; the tree never shares nodes.
type Node struct {
	Kind      NodeKind
	Direction IODirection
	Integer   int // literal value, bit index or pin number
	Name      string
	Children  []*Node
	Pos       Pos
}

func NewNode(kind NodeKind, pos Pos) *Node {
	return &Node{
		Kind:    kind,
		Integer: NoInteger,
		Pos:     pos,
	}
}

func (n *Node) Add(child *Node) {
	n.Children = append(n.Children, child)
}

func (n *Node) HasInteger() bool {
	return n.Integer != NoInteger
}

// Walk visits n and every descendant in pre-order.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

func Dump(w io.Writer, n *Node) error {
	return dump(w, n, 0)
}

func dump(w io.Writer, n *Node, indent int) error {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString("Node: ")
	sb.WriteString(n.Kind.String())
	if n.Name != "" {
		sb.WriteString("  ")
		sb.WriteString(n.Name)
	}
	if n.HasInteger() {
		fmt.Fprintf(&sb, "  int:%d", n.Integer)
	}
	if n.Direction != DirUnknown {
		sb.WriteString("  dir:")
		sb.WriteString(n.Direction.String())
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := dump(w, child, indent+1); err != nil {
			return err
		}
	}
	return nil
}
