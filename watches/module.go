package watches

import (
	"github.com/reusee/dscope"
	"github.com/reusee/wiggler/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
