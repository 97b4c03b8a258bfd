package cmds

import (
	"strings"
	"testing"
)

func TestUsage(t *testing.T) {
	executor := NewExecutor()
	executor.Define("foo", Sub(map[string]*Command{
		"bar": Func(func() {
		}).Desc("BAR"),
		"baz": Sub(map[string]*Command{
			"qux": Func(func() {}).Desc("QUX"),
		}).Desc("BAZ"),
	}).Desc("FOO"))
	executor.PrintUsage()
}

func TestWriteUsage(t *testing.T) {
	executor := NewExecutor()
	executor.Define("run", Func(func(path string) {}).Desc("run a program").Alias("r"))
	executor.Define("-x", Func(func() {}).Desc("set x"))
	executor.Define("!-x", Func(func() {}))
	executor.Define("-x.", Func(func() {}))
	var buf strings.Builder
	executor.WriteUsage(&buf)
	out := buf.String()
	if strings.Count(out, "run a program") != 1 {
		t.Fatalf("got %s", out)
	}
	if !strings.Contains(out, "-h (help, -help, --help)\tprint this usage") {
		t.Fatalf("got %s", out)
	}
	if !strings.Contains(out, "-x\tset x") || strings.Contains(out, "!-x") || strings.Contains(out, "-x.") {
		t.Fatalf("got %s", out)
	}
}
