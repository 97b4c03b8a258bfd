package wiggconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/wiggler/configs"
	"github.com/reusee/wiggler/logs"
	"github.com/reusee/wiggler/modes"
)

//go:embed schema.cue
var schema string

var filenames = []string{
	"wiggler.cue",
	".wiggler.cue",
}

func (Module) ConfigsLoader(
	logger logs.Logger,
	mode modes.Mode,
) configs.Loader {

	var paths []string
	defer func() {
		if len(paths) > 0 {
			logger.Info("config file",
				"paths", paths,
			)
		}
	}()

	addDir := func(dir string) {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	// working directory
	if workingDir, err := os.Getwd(); err == nil {
		addDir(workingDir)
	}

	// tests see only the working directory
	if mode == modes.ModeDevelopment {
		return configs.NewLoader(paths, schema)
	}

	// user config dir
	if configDir, err := os.UserConfigDir(); err == nil {
		addDir(configDir)
	}

	// system wide dir
	addDir("/etc")

	return configs.NewLoader(paths, schema)
}
