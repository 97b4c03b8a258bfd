package wigglang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reusee/wiggler/wiggvm"
)

func compile(t *testing.T, src string, options Options) *Program {
	t.Helper()
	program, err := CompileString("test", src, options)
	if err != nil {
		t.Fatal(err)
	}
	return program
}

func listing(code []byte) []string {
	var ret []string
	for _, inst := range wiggvm.Decode(code) {
		ret = append(ret, inst.Text)
	}
	return ret
}

func expectListing(t *testing.T, code []byte, expected ...string) {
	t.Helper()
	got := listing(code)
	if strings.Join(got, "\n") != strings.Join(expected, "\n") {
		t.Fatalf("got\n%s\nexpected\n%s", strings.Join(got, "\n"), strings.Join(expected, "\n"))
	}
}

func TestGeneratePinAssign(t *testing.T) {
	program := compile(t, `
DEFINE LED = PIN 5 OUTPUT
PROC main()
	LED = 1
ENDPROC
`, Options{})

	if len(program.Diagnostics) > 0 {
		t.Fatalf("got %v", program.Diagnostics)
	}
	expectListing(t, program.Code,
		"LIT 1",
		"SETPIN 5",
		"RET",
	)

	if len(program.Symbols) != 2 {
		t.Fatalf("got %v", program.Symbols)
	}
	led := program.Symbols[0]
	if led.Kind != SymbolPin || led.Name != "LED" || led.Integer != 5 || led.Direction != DirOutput {
		t.Fatalf("got %v", led)
	}
	main, ok := program.Proc("main")
	if !ok || main.Integer != 0 || main.Address != 0 {
		t.Fatalf("got %v", main)
	}
}

func TestGenerateRep(t *testing.T) {
	program := compile(t, `
PROC loop()
	REP 3
		WAIT 1
	ENDREP
ENDPROC
`, Options{})

	expectListing(t, program.Code,
		"LIT 3",
		"LIT 1",
		"WAIT",
		"DEC",
		"JNZ @3",
		"POP",
		"RET",
		"RET",
	)

	bench := new(wiggvm.Bench)
	m := wiggvm.NewMachine(bench)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call(context.Background(), 0, 1000); err != nil {
		t.Fatal(err)
	}
	if bench.Waited != 3 {
		t.Fatalf("got %d", bench.Waited)
	}
	if m.Depth() != 0 {
		t.Fatalf("got %v", m.Words())
	}
}

func TestGenerateNestedRep(t *testing.T) {
	program := compile(t, `
PROC loop()
	REP 2
		REP 3
			WAIT 1
		ENDREP
	ENDREP
ENDPROC
`, Options{})

	// inner loop branches back past its own counter
	text := listing(program.Code)
	if text[0] != "LIT 2" || text[1] != "LIT 3" || text[5] != "JNZ @6" {
		t.Fatalf("got %v", text)
	}
	// each ENDREP closes the innermost open loop
	if text[8] != "DEC" || text[9] != "JNZ @3" || text[10] != "POP" || text[11] != "RET" {
		t.Fatalf("got %v", text)
	}

	// ENDREP ends with RET, so the inner loop leaves the procedure with the
	// outer counter still on the stack, and RET takes it as the return address
	bench := new(wiggvm.Bench)
	m := wiggvm.NewMachine(bench)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	if err := m.Invoke(0); err != nil {
		t.Fatal(err)
	}
	const innerRet = 15
	for m.IP != innerRet {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if bench.Waited != 3 {
		t.Fatalf("got %d", bench.Waited)
	}
	if w := m.Words(); len(w) != 4 || w[3] != 2 {
		t.Fatalf("got %v", w)
	}
	if err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.IP != 2 || m.BP != 0xff || m.Halted() {
		t.Fatalf("got ip %d bp %d", m.IP, m.BP)
	}

	// the machine never returns to the host normally
	m = wiggvm.NewMachine(nil)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call(context.Background(), 0, 1<<16); err == nil {
		t.Fatal("should fail")
	}
}

func TestGenerateUnresolved(t *testing.T) {
	src := `
DEFINE LED = PIN 5 OUTPUT
PROC main()
	LED = 1
	ghost = 2
	LED = 0
ENDPROC
`
	program := compile(t, src, Options{})
	expectListing(t, program.Code,
		"LIT 1",
		"SETPIN 5",
		"LIT 2",
		"POP",
		"LIT 0",
		"SETPIN 5",
		"RET",
	)

	bench := new(wiggvm.Bench)
	m := wiggvm.NewMachine(bench)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call(context.Background(), 0, 100); err != nil {
		t.Fatal(err)
	}
	if m.Depth() != 0 || bench.Level(5) != 0 {
		t.Fatalf("got %v", m.Words())
	}
	if len(program.Diagnostics) != 1 {
		t.Fatalf("got %v", program.Diagnostics)
	}
	diag := program.Diagnostics[0]
	if diag.Kind != DiagSemantic || diag.Pos.Line != 5 || !errors.Is(diag.Err, ErrUnresolved) {
		t.Fatalf("got %v", diag)
	}
	if !strings.Contains(diag.String(), "ghost") {
		t.Fatalf("got %s", diag)
	}

	_, err := CompileString("test", src, Options{Strict: true})
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "test:5:") || !strings.Contains(err.Error(), "^") {
		t.Fatalf("got %v", err)
	}
}

func TestGenerateUnresolvedBalanced(t *testing.T) {
	tests := []struct {
		src      string
		expected uint16
		listing  []string
	}{
		{
			"PROC main() VAR y q = 1 y = 2 RET y ENDPROC", 2,
			[]string{"RES 1", "LIT 1", "POP", "LIT 2", "STORE [bp+1]", "LOAD [bp+1]", "STORE [bp-2]", "POPN 1", "RET"},
		},
		{
			"PROC main() VAR y nope(1, 2) y = 3 RET y ENDPROC", 3,
			[]string{"RES 1", "LIT 1", "LIT 2", "POPN 2", "LIT 3", "STORE [bp+1]", "LOAD [bp+1]", "STORE [bp-2]", "POPN 1", "RET"},
		},
		{
			"PROC main() VAR y y = 9 y = ghost(4) RET y ENDPROC", 0,
			[]string{"RES 1", "LIT 9", "STORE [bp+1]", "LIT 4", "POPN 1", "LIT 0", "STORE [bp+1]", "LOAD [bp+1]", "STORE [bp-2]", "POPN 1", "RET"},
		},
		{
			"PROC main() VAR y y = 9 y = ghost RET y ENDPROC", 0,
			nil,
		},
		{
			"PROC main() VAR y y = 5 WAIT OUTPUT RET y ENDPROC", 5,
			nil,
		},
		{
			"PROC f(a) RET a ENDPROC PROC main() VAR y y = f(1, 2) RET y ENDPROC", 0,
			nil,
		},
	}
	for _, test := range tests {
		program := compile(t, test.src, Options{})
		if len(program.Diagnostics) != 1 {
			t.Fatalf("%q: got %v", test.src, program.Diagnostics)
		}
		main, ok := program.Proc("main")
		if !ok {
			t.Fatal("no main")
		}
		if test.listing != nil {
			expectListing(t, program.Code[main.Address:], test.listing...)
		}

		m := wiggvm.NewMachine(nil)
		if err := m.Load(program.Code); err != nil {
			t.Fatal(err)
		}
		ret, err := m.Call(context.Background(), uint16(main.Address), 100)
		if err != nil {
			t.Fatalf("%q: got %v", test.src, err)
		}
		if ret != test.expected {
			t.Fatalf("%q: got %d", test.src, ret)
		}
		if m.Depth() != 0 {
			t.Fatalf("%q: got %v", test.src, m.Words())
		}
	}
}

func TestGenerateSemanticErrors(t *testing.T) {
	tests := []struct {
		src string
		err error
	}{
		{"PROC p() x = 1 ENDPROC", ErrUnresolved},
		{"PROC p() VAR x x = p ENDPROC", ErrKindMismatch},
		{"DEFINE A = PIN 1 OUTPUT PROC p() VAR v v = A() ENDPROC", ErrKindMismatch},
		{"PROC f(a) ENDPROC PROC p() f() ENDPROC", ErrArity},
		{"PROC f() ENDPROC PROC p() VAR v v = f ENDPROC", ErrKindMismatch},
		{"PROC p() VAR v v = INPUT ENDPROC", ErrKindMismatch},
		{"PROC p() VAR v undefined() ENDPROC", ErrUnresolved},
		{"PROC p() nope = OUTPUT ENDPROC", ErrUnresolved},
	}
	for _, test := range tests {
		program := compile(t, test.src, Options{})
		if len(program.Diagnostics) == 0 {
			t.Fatalf("%q: no diagnostics", test.src)
		}
		if !errors.Is(program.Diagnostics[0].Err, test.err) {
			t.Fatalf("%q: got %v", test.src, program.Diagnostics)
		}
		_, err := CompileString("test", test.src, Options{Strict: true})
		if !errors.Is(err, test.err) {
			t.Fatalf("%q: got %v", test.src, err)
		}

		// best-effort code still returns cleanly
		p, _ := program.Proc("p")
		m := wiggvm.NewMachine(nil)
		if err := m.Load(program.Code); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Call(context.Background(), uint16(p.Address), 100); err != nil {
			t.Fatalf("%q: got %v", test.src, err)
		}
		if m.Depth() != 0 {
			t.Fatalf("%q: got %v", test.src, m.Words())
		}
	}
}

func TestGenerateDirection(t *testing.T) {
	program := compile(t, `
DEFINE LED = PIN 9 BIDIR
PROC main()
	LED = OUTPUT
	LED = INPUT
ENDPROC
`, Options{})
	expectListing(t, program.Code,
		"SETOUTPUT 9",
		"SETINPUT 9",
		"RET",
	)

	bench := new(wiggvm.Bench)
	m := wiggvm.NewMachine(bench)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call(context.Background(), 0, 100); err != nil {
		t.Fatal(err)
	}
	if bench.Direction(9) != wiggvm.Input {
		t.Fatalf("got %v", bench.Direction(9))
	}
}

func TestGenerateArgument(t *testing.T) {
	program := compile(t, `
PROC id(a)
	RET a
ENDPROC
`, Options{})
	expectListing(t, program.Code,
		"LOAD [bp-2]",
		"STORE [bp-3]",
		"RET",
	)

	m := wiggvm.NewMachine(nil)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	id, _ := program.Proc("id")
	ret, err := m.Call(context.Background(), uint16(id.Address), 100, 42)
	if err != nil {
		t.Fatal(err)
	}
	if ret != 42 {
		t.Fatalf("got %d", ret)
	}
}

func TestGenerateCall(t *testing.T) {
	program := compile(t, `
PROC pick(a, b)
	RET b
ENDPROC
PROC main()
	VAR t
	t = pick(1, 2)
	pick(3, 4)
	RET t
ENDPROC
`, Options{})

	main, _ := program.Proc("main")
	expectListing(t, program.Code[main.Address:],
		"RES 1",
		"LIT 0",
		"LIT 1",
		"LIT 2",
		"CALL @0",
		"POPN 2",
		"STORE [bp+1]",
		"LIT 0",
		"LIT 3",
		"LIT 4",
		"CALL @0",
		"POPN 2",
		"POP",
		"LOAD [bp+1]",
		"STORE [bp-2]",
		"POPN 1",
		"RET",
	)

	m := wiggvm.NewMachine(nil)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	ret, err := m.Call(context.Background(), uint16(main.Address), 1000)
	if err != nil {
		t.Fatal(err)
	}
	if ret != 2 {
		t.Fatalf("got %d", ret)
	}
	if m.Depth() != 0 {
		t.Fatalf("got %v", m.Words())
	}
}

func TestGenerateBits(t *testing.T) {
	program := compile(t, `
PROC set(v)
	VAR r
	r[3] = v
	r[0] = 1
	RET r
ENDPROC
PROC get(v)
	RET v[2]
ENDPROC
PROC half(v)
	RET SHR v
ENDPROC
`, Options{})

	m := wiggvm.NewMachine(nil)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		proc     string
		arg      uint16
		expected uint16
	}{
		{"set", 1, 9},
		{"set", 0, 1},
		{"get", 4, 1},
		{"get", 3, 0},
		{"half", 9, 4},
	}
	for _, test := range tests {
		proc, ok := program.Proc(test.proc)
		if !ok {
			t.Fatalf("no %s", test.proc)
		}
		ret, err := m.Call(context.Background(), uint16(proc.Address), 100, test.arg)
		if err != nil {
			t.Fatal(err)
		}
		if ret != test.expected {
			t.Fatalf("%s(%d): got %d, expected %d", test.proc, test.arg, ret, test.expected)
		}
	}
}

func TestGeneratePins(t *testing.T) {
	program := compile(t, `
DEFINE IN = PIN 1 INPUT
DEFINE OUT = PIN 2 OUTPUT
PROC echo()
	OUT = IN
ENDPROC
`, Options{})
	expectListing(t, program.Code,
		"GETPIN 1",
		"SETPIN 2",
		"RET",
	)

	bench := new(wiggvm.Bench)
	bench.SetPin(1, 7)
	m := wiggvm.NewMachine(bench)
	if err := m.Load(program.Code); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call(context.Background(), 0, 100); err != nil {
		t.Fatal(err)
	}
	if bench.Level(2) != 7 {
		t.Fatalf("got %d", bench.Level(2))
	}
}

func TestGenerateListing(t *testing.T) {
	program := compile(t, `
DEFINE LED = PIN 5 OUTPUT
PROC on() LED = 1 ENDPROC
PROC off() LED = 0 ENDPROC
`, Options{})

	var buf bytes.Buffer
	if err := wiggvm.Listing(&buf, program.Code, program.Labels()); err != nil {
		t.Fatal(err)
	}
	expected := `on:
0000  LIT 1
0003  SETPIN 5
0005  RET
off:
0006  LIT 0
0009  SETPIN 5
0011  RET
`
	if buf.String() != expected {
		t.Fatalf("got\n%s", buf.String())
	}
}

func TestGenerateImage(t *testing.T) {
	program := compile(t, `
PROC a(x, y) ENDPROC
PROC b() ENDPROC
`, Options{})
	image := program.Image("test.wig")
	if len(image.Procs) != 2 {
		t.Fatalf("got %v", image.Procs)
	}
	proc, ok := image.Proc("a")
	if !ok || proc.Args != 2 || proc.Entry != 0 {
		t.Fatalf("got %+v", proc)
	}
	proc, ok = image.Proc("b")
	if !ok || proc.Args != 0 || proc.Entry != 1 {
		t.Fatalf("got %+v", proc)
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := CompileString("bad.wig", "PROC main(\nENDPROC", Options{})
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "bad.wig:2:") {
		t.Fatalf("got %v", err)
	}
}

func TestCompileDiagnosticsMerged(t *testing.T) {
	program := compile(t, "PROC main() $ x = 1 ENDPROC", Options{})
	if len(program.Diagnostics) != 2 {
		t.Fatalf("got %v", program.Diagnostics)
	}
	if program.Diagnostics[0].Kind != DiagLexical || program.Diagnostics[1].Kind != DiagSemantic {
		t.Fatalf("got %v", program.Diagnostics)
	}
}
