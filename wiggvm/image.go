package wiggvm

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
)

// ImageFormat is the version written into encoded images.
const ImageFormat = "1.0.0"

var ErrImageFormat = errors.New("unsupported image format")

var supportedFormats = func() *semver.Constraints {
	c, err := semver.NewConstraint("^1")
	if err != nil {
		panic(err)
	}
	return c
}()

// Image is a compiled program with its procedure table.
type Image struct {
	Format string
	Source string
	Code   []byte
	Procs  []ProcEntry
}

type ProcEntry struct {
	Name  string
	Entry uint16
	Args  int
}

func (i *Image) Proc(name string) (ProcEntry, bool) {
	for _, proc := range i.Procs {
		if proc.Name == name {
			return proc, true
		}
	}
	return ProcEntry{}, false
}

func (i *Image) Labels() map[uint16]string {
	ret := make(map[uint16]string, len(i.Procs))
	for _, proc := range i.Procs {
		ret[proc.Entry] = proc.Name
	}
	return ret
}

func (i *Image) Encode(w io.Writer) error {
	if i.Format == "" {
		i.Format = ImageFormat
	}
	if err := CheckFormat(i.Format); err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(i)
}

func DecodeImage(r io.Reader) (*Image, error) {
	var image Image
	if err := gob.NewDecoder(r).Decode(&image); err != nil {
		return nil, err
	}
	if err := CheckFormat(image.Format); err != nil {
		return nil, err
	}
	if len(image.Code) > CodeSize {
		return nil, ErrCodeTooLarge
	}
	return &image, nil
}

func CheckFormat(format string) error {
	version, err := semver.NewVersion(format)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrImageFormat, format, err)
	}
	if !supportedFormats.Check(version) {
		return fmt.Errorf("%w: %s", ErrImageFormat, version)
	}
	return nil
}
