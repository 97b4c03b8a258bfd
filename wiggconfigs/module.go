package wiggconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/wiggler/configs"
	"github.com/reusee/wiggler/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
