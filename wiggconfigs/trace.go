package wiggconfigs

import (
	"github.com/reusee/wiggler/cmds"
	"github.com/reusee/wiggler/configs"
)

// Trace logs every hardware access of a running machine.
type Trace bool

var traceFlag = cmds.Switch("-trace", "log every hardware access")

func (Module) Trace(
	loader configs.Loader,
) Trace {
	if *traceFlag {
		return true
	}
	return Trace(configs.First[bool](loader, "trace"))
}
