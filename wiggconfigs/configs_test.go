package wiggconfigs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/wiggler/cmds"
	"github.com/reusee/wiggler/modes"
	"github.com/reusee/wiggler/wigglang"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Call(func(
		strict Strict,
		maxSteps MaxSteps,
		trace Trace,
		parallel Parallel,
		output OutputDir,
	) {
		if strict {
			t.Fatal("should not be strict")
		}
		if maxSteps != defaultMaxSteps {
			t.Fatalf("got %d", maxSteps)
		}
		if trace {
			t.Fatal("should not trace")
		}
		if parallel < 1 {
			t.Fatalf("got %d", parallel)
		}
		if output != "." {
			t.Fatalf("got %s", output)
		}
	})
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "wiggler.cue"), []byte(`
strict: true
max_steps: 500
trace: true
parallel: 3
output: "out"
`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Call(func(
		options wigglang.Options,
		maxSteps MaxSteps,
		trace Trace,
		parallel Parallel,
		output OutputDir,
	) {
		if !options.Strict {
			t.Fatal("should be strict")
		}
		if maxSteps != 500 {
			t.Fatalf("got %d", maxSteps)
		}
		if !trace {
			t.Fatal("should trace")
		}
		if parallel != 3 {
			t.Fatalf("got %d", parallel)
		}
		if output != "out" {
			t.Fatalf("got %s", output)
		}
	})
}

func TestFlagOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".wiggler.cue"), []byte(`
max_steps: 500
`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cmds.GlobalExecutor.MustExecute([]string{"-max-steps", "42"})
	defer cmds.GlobalExecutor.MustExecute([]string{"-max-steps."})

	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Call(func(
		maxSteps MaxSteps,
	) {
		if maxSteps != 42 {
			t.Fatalf("got %d", maxSteps)
		}
	})
}
