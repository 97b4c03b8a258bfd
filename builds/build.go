package builds

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reusee/wiggler/logs"
	"github.com/reusee/wiggler/syncs"
	"github.com/reusee/wiggler/wiggconfigs"
	"github.com/reusee/wiggler/wigglang"
	"golang.org/x/sync/errgroup"
)

type Result struct {
	Path    string
	Output  string
	Program *wigglang.Program
}

// Build compiles sources concurrently and writes one image per source.
// Results are in input order; the first failure cancels the remaining work.
type Build func(ctx context.Context, paths []string) ([]Result, error)

func (Module) Build(
	logger logs.Logger,
	newSpan logs.NewSpan,
	compile Compile,
	parallel wiggconfigs.Parallel,
	outputDir wiggconfigs.OutputDir,
) Build {
	return func(ctx context.Context, paths []string) ([]Result, error) {
		ctx, _ = newSpan(ctx, "")

		if err := os.MkdirAll(string(outputDir), 0755); err != nil {
			return nil, logs.WrapSpan(ctx, err)
		}

		seen := make(map[string]string)
		for _, path := range paths {
			output := ImagePath(string(outputDir), path)
			if other, ok := seen[output]; ok {
				return nil, fmt.Errorf("%s and %s both build to %s", other, path, output)
			}
			seen[output] = path
		}

		results := make([]Result, len(paths))
		sem := syncs.NewSemaphore(int(parallel))
		g, gctx := errgroup.WithContext(ctx)

		for i, path := range paths {
			g.Go(func() error {
				if err := sem.Acquire(gctx); err != nil {
					return err
				}
				defer sem.Release()

				src, err := ReadSource(path)
				if err != nil {
					return err
				}
				program, err := compile(gctx, src)
				if err != nil {
					return err
				}
				output := ImagePath(string(outputDir), path)
				if err := writeImage(output, program, path); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}

				results[i] = Result{
					Path:    path,
					Output:  output,
					Program: program,
				}
				logger.InfoContext(gctx, "built",
					"source", path,
					"image", output,
					"bytes", len(program.Code),
					"diagnostics", len(program.Diagnostics),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return results, logs.WrapSpan(ctx, err)
		}
		return results, nil
	}
}

// writeImage replaces output atomically.
func writeImage(output string, program *wigglang.Program, source string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(output), ".wimg-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	if err := program.Image(source).Encode(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), output)
}
