package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reusee/wiggler/builds"
	"github.com/reusee/wiggler/logs"
	"github.com/reusee/wiggler/wiggconfigs"
	"github.com/reusee/wiggler/wigglang"
	"github.com/reusee/wiggler/wiggvm"
)

func printTokens(w io.Writer, src *wigglang.Source) error {
	tokens, diagnostics, err := wigglang.Lex(src.Reader())
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		if _, err := fmt.Fprintln(w, tok); err != nil {
			return err
		}
	}
	for _, diag := range diagnostics {
		if _, err := fmt.Fprintf(w, "# %s\n", diag); err != nil {
			return err
		}
	}
	return nil
}

func printAST(w io.Writer, src *wigglang.Source) error {
	tokens, _, err := wigglang.Lex(src.Reader())
	if err != nil {
		return err
	}
	root, err := wigglang.Parse(tokens)
	if err != nil {
		return wigglang.WithSource(err, src)
	}
	wigglang.Desugar(root)
	return wigglang.Dump(w, root)
}

func printListing(w io.Writer, image *wiggvm.Image) error {
	return wiggvm.Listing(w, image.Code, image.Labels())
}

// loadImage resolves a command line path to an image; stdin is read as source.
func loadImage(ctx context.Context, path string, load builds.Load, compile builds.Compile) (*wiggvm.Image, error) {
	if path != stdinPath {
		return load(ctx, path)
	}
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}
	program, err := compile(ctx, src)
	if err != nil {
		return nil, err
	}
	return program.Image(src.Name), nil
}

// parseArgs parses comma separated 16-bit words.
func parseArgs(str string) ([]uint16, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, nil
	}
	var ret []uint16
	for _, field := range strings.Split(str, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 0, 16)
		if err != nil {
			return nil, fmt.Errorf("bad argument %q: %w", field, err)
		}
		ret = append(ret, uint16(v))
	}
	return ret, nil
}

func newHardware(ctx context.Context, trace wiggconfigs.Trace, logger logs.Logger) (*wiggvm.Bench, wiggvm.Hardware) {
	bench := new(wiggvm.Bench)
	if !trace {
		return bench, bench
	}
	return bench, wiggvm.TraceHardware{
		Hardware: bench,
		Logger:   logger,
		Context:  ctx,
	}
}

// prepare loads image into a machine and invokes proc with args.
func prepare(image *wiggvm.Image, name string, args []uint16, hardware wiggvm.Hardware) (*wiggvm.Machine, error) {
	proc, ok := image.Proc(name)
	if !ok {
		return nil, fmt.Errorf("no procedure %s in %s", name, image.Source)
	}
	if proc.Args != len(args) {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", name, proc.Args, len(args))
	}
	m := wiggvm.NewMachine(hardware)
	if err := m.Load(image.Code); err != nil {
		return nil, err
	}
	if err := m.Invoke(proc.Entry, args...); err != nil {
		return nil, err
	}
	return m, nil
}

func runProc(ctx context.Context, m *wiggvm.Machine, maxSteps wiggconfigs.MaxSteps) (uint16, error) {
	if err := m.Run(ctx, uint64(maxSteps)); err != nil {
		return 0, err
	}
	return m.Return()
}
