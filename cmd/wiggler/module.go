package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/wiggler/builds"
	"github.com/reusee/wiggler/debugs"
	"github.com/reusee/wiggler/watches"
)

type Module struct {
	dscope.Module
	Builds  builds.Module
	Watches watches.Module
	Debugs  debugs.Module
}
