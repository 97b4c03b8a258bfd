package wiggconfigs

import (
	"github.com/reusee/wiggler/cmds"
	"github.com/reusee/wiggler/configs"
	"github.com/reusee/wiggler/vars"
)

// MaxSteps bounds one machine run.
type MaxSteps uint64

const defaultMaxSteps = 1 << 20

var maxStepsFlag = cmds.Var[uint64]("-max-steps", "instruction limit of one run")

func (Module) MaxSteps(
	loader configs.Loader,
) MaxSteps {
	return MaxSteps(vars.FirstNonZero(
		*maxStepsFlag,
		configs.First[uint64](loader, "max_steps"),
		defaultMaxSteps,
	))
}
