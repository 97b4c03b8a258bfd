package builds

import (
	"context"
	"fmt"
	"os"

	"github.com/reusee/wiggler/logs"
	"github.com/reusee/wiggler/wigglang"
	"github.com/reusee/wiggler/wiggvm"
)

// Compile compiles a source and logs its diagnostics.
type Compile func(ctx context.Context, src *wigglang.Source) (*wigglang.Program, error)

func (Module) Compile(
	logger logs.Logger,
	options wigglang.Options,
) Compile {
	return func(ctx context.Context, src *wigglang.Source) (*wigglang.Program, error) {
		program, err := wigglang.Compile(src, options)
		if err != nil {
			return nil, err
		}
		for _, diag := range program.Diagnostics {
			logger.WarnContext(ctx, "diagnostic",
				"source", src.Name,
				"kind", diag.Kind.String(),
				"line", diag.Pos.Line,
				"message", diag.Message,
			)
		}
		return program, nil
	}
}

// Load returns the image at path, compiling it first unless it is already an image.
type Load func(ctx context.Context, path string) (*wiggvm.Image, error)

func (Module) Load(
	compile Compile,
) Load {
	return func(ctx context.Context, path string) (*wiggvm.Image, error) {
		if IsImage(path) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			image, err := wiggvm.DecodeImage(f)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return image, nil
		}

		src, err := ReadSource(path)
		if err != nil {
			return nil, err
		}
		program, err := compile(ctx, src)
		if err != nil {
			return nil, err
		}
		return program.Image(path), nil
	}
}
