package configs

import (
	"errors"

	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
}

var ErrValueNotFound = errors.New("value not found")
