package builds

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/reusee/wiggler/wigglang"
)

// ImageExt marks encoded images; anything else is treated as source.
const ImageExt = ".wimg"

func ReadSource(path string) (*wigglang.Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return wigglang.NewSource(path, string(content)), nil
}

// ImagePath is the output path of the image built from source path.
func ImagePath(dir string, path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+ImageExt)
}

func IsImage(path string) bool {
	return filepath.Ext(path) == ImageExt
}
