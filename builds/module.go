package builds

import (
	"github.com/reusee/dscope"
	"github.com/reusee/wiggler/wiggconfigs"
)

type Module struct {
	dscope.Module
	Configs wiggconfigs.Module
}
