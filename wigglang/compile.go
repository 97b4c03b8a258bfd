package wigglang

import (
	"github.com/reusee/wiggler/procs"
)

// Unit is the state shared by the compile stages.
type Unit struct {
	Source  *Source
	Options Options

	Tokens      []Token
	AST         *Node
	Rewrites    int
	Program     *Program
	Diagnostics []Diagnostic
}

func LexStage(u *Unit) error {
	tokens, diagnostics, err := Lex(u.Source.Reader())
	if err != nil {
		return err
	}
	u.Tokens = tokens
	u.Diagnostics = append(u.Diagnostics, diagnostics...)
	return nil
}

func ParseStage(u *Unit) error {
	root, err := Parse(u.Tokens)
	if err != nil {
		return err
	}
	u.AST = root
	return nil
}

func DesugarStage(u *Unit) error {
	u.Rewrites = Desugar(u.AST)
	return nil
}

func GenerateStage(u *Unit) error {
	program, err := Generate(u.AST, u.Options)
	if err != nil {
		return err
	}
	u.Diagnostics = append(u.Diagnostics, program.Diagnostics...)
	program.Diagnostics = u.Diagnostics
	u.Program = program
	return nil
}

// Stages returns a fresh lex, parse, desugar, generate chain.
func Stages() procs.Procs[*Unit] {
	return procs.Procs[*Unit]{
		procs.Step(LexStage),
		procs.Step(ParseStage),
		procs.Step(DesugarStage),
		procs.Step(GenerateStage),
	}
}

// Compile runs the whole pipeline. Diagnostics from lexing and generation
// are attached to the returned program; syntax errors and strict-mode
// semantic errors are returned with source context.
func Compile(src *Source, options Options) (*Program, error) {
	unit := &Unit{
		Source:  src,
		Options: options,
	}
	if err := procs.Drive[*Unit](unit, Stages()); err != nil {
		return nil, WithSource(err, src)
	}
	return unit.Program, nil
}

func CompileString(name string, content string, options Options) (*Program, error) {
	return Compile(NewSource(name, content), options)
}
