package wiggconfigs

import (
	"github.com/reusee/wiggler/cmds"
	"github.com/reusee/wiggler/configs"
	"github.com/reusee/wiggler/wigglang"
)

// Strict makes semantic errors abort compilation.
type Strict bool

var strictFlag = cmds.Switch("-strict", "abort compilation on the first semantic error")

func (Module) Strict(
	loader configs.Loader,
) Strict {
	if *strictFlag {
		return true
	}
	return Strict(configs.First[bool](loader, "strict"))
}

func (Module) CompileOptions(
	strict Strict,
) wigglang.Options {
	return wigglang.Options{
		Strict: bool(strict),
	}
}
