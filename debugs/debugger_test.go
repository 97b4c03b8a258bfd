package debugs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/reusee/wiggler/wiggvm"
)

func countdown(t *testing.T) *wiggvm.Machine {
	var code []byte
	code = wiggvm.EmitWord(code, wiggvm.OpLit, 2)
	code = wiggvm.Emit(code, wiggvm.OpDec)
	code = wiggvm.EmitWord(code, wiggvm.OpJnz, 3)
	code = wiggvm.Emit(code, wiggvm.OpPop)
	code = wiggvm.Emit(code, wiggvm.OpRet)

	m := wiggvm.NewMachine(nil)
	if err := m.Load(code); err != nil {
		t.Fatal(err)
	}
	if err := m.Invoke(0); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDebuggerStep(t *testing.T) {
	var out bytes.Buffer
	d := NewDebugger(countdown(t), map[uint16]string{0: "main"}, &out)
	ctx := context.Background()

	exec := func(input string) string {
		out.Reset()
		quit, err := d.Exec(ctx, input)
		if err != nil {
			t.Fatalf("%s: %v", input, err)
		}
		if quit {
			t.Fatalf("%s: quit", input)
		}
		return out.String()
	}

	if got := exec("l"); got != "main:\n0000  LIT 2\n" {
		t.Fatalf("got %q", got)
	}
	if got := exec(""); got != "0003  DEC\n" {
		t.Fatalf("got %q", got)
	}
	if got := exec("s 2"); got != "0003  DEC\n" {
		t.Fatalf("got %q", got)
	}
	if got := exec("r"); got != "ip=0003 sp=3 bp=2 depth=4 steps=3\n" {
		t.Fatalf("got %q", got)
	}
	if got := exec("x"); !strings.Contains(got, "  2  65535 <- bp\n") || !strings.HasSuffix(got, "  3  1\n") {
		t.Fatalf("got %q", got)
	}
	if got := exec("c"); got != "halted\n" {
		t.Fatalf("got %q", got)
	}
	if ret, err := d.Machine.Return(); err != nil || ret != 0 {
		t.Fatalf("got %d %v", ret, err)
	}

	quit, err := d.Exec(ctx, "q")
	if err != nil || !quit {
		t.Fatal("should quit")
	}
}

func TestDebuggerBreakpoint(t *testing.T) {
	var out bytes.Buffer
	d := NewDebugger(countdown(t), nil, &out)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "b 7"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if _, err := d.Exec(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "breakpoint 0007\n0007  POP\n" {
		t.Fatalf("got %q", got)
	}

	out.Reset()
	if _, err := d.Exec(ctx, "b 7"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "cleared") || len(d.Breakpoints) != 0 {
		t.Fatalf("got %q", out.String())
	}
}

func TestDebuggerFault(t *testing.T) {
	m := wiggvm.NewMachine(nil)
	if err := m.Load(wiggvm.Emit(nil, wiggvm.OpPop)); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	d := NewDebugger(m, nil, &out)
	d.MaxSteps = 10
	if _, err := d.Exec(context.Background(), "c"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "stack underflow") {
		t.Fatalf("got %q", out.String())
	}
}

func TestDebuggerBadInput(t *testing.T) {
	d := NewDebugger(countdown(t), nil, new(bytes.Buffer))
	for _, input := range []string{"s x", "s 0", "b", "b -1", "tap", "frobnicate"} {
		if _, err := d.Exec(context.Background(), input); err == nil {
			t.Fatalf("%q: should fail", input)
		}
	}
}

func TestMachineGlobals(t *testing.T) {
	m := countdown(t)
	globals := MachineGlobals(m, map[uint16]string{0: "main"})
	if globals["bp"] != uint8(2) || globals["ip"] != uint16(0) {
		t.Fatalf("got %v", globals)
	}
	disasm := globals["disasm"].(func(int) string)
	if got := disasm(0); got != "LIT 2" {
		t.Fatalf("got %s", got)
	}
	if got := disasm(100); got != "" {
		t.Fatalf("got %s", got)
	}
	slot := globals["slot"].(func(int) int)
	if got := slot(0); got != wiggvm.HaltAddress {
		t.Fatalf("got %d", got)
	}
	if got := slot(5); got != -1 {
		t.Fatalf("got %d", got)
	}
	for name, value := range globals {
		if name == "disasm" || name == "slot" {
			continue
		}
		toStarlarkValue(value)
	}
}
