package main

import (
	"errors"
	"io"
	"os"

	"github.com/reusee/wiggler/builds"
	"github.com/reusee/wiggler/wigglang"
	"golang.org/x/term"
)

// stdinPath names standard input on the command line.
const stdinPath = "-"

var errNoInput = errors.New("no input on stdin")

func getStdinContent() ([]byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}
	return io.ReadAll(os.Stdin)
}

func readSource(path string) (*wigglang.Source, error) {
	if path != stdinPath {
		return builds.ReadSource(path)
	}
	content, err := getStdinContent()
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errNoInput
	}
	return wigglang.NewSource("<stdin>", string(content)), nil
}
