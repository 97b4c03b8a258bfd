package wiggconfigs

import (
	"runtime"

	"github.com/reusee/wiggler/cmds"
	"github.com/reusee/wiggler/configs"
	"github.com/reusee/wiggler/vars"
)

// Parallel is the number of files compiled at once.
type Parallel int

var parallelFlag = cmds.Var[int]("-parallel", "number of files compiled at once")

func (Module) Parallel(
	loader configs.Loader,
) Parallel {
	n := vars.FirstNonZero(
		*parallelFlag,
		configs.First[int](loader, "parallel"),
		runtime.NumCPU(),
	)
	return Parallel(max(n, 1))
}

// OutputDir is where built images are written.
type OutputDir string

var outputFlag = cmds.Var[string]("-o", "output directory of built images")

func (Module) OutputDir(
	loader configs.Loader,
) OutputDir {
	return OutputDir(vars.FirstNonZero(
		*outputFlag,
		configs.First[string](loader, "output"),
		".",
	))
}
