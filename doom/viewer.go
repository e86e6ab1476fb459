package doom

import (
	"fmt"
	"image/png"
	"path"

	"github.com/spf13/afero"
	"github.com/zeu5/doomgym/types"
	"github.com/zeu5/doomgym/util"
)

// Viewer displays rendered frames
type Viewer interface {
	Show(types.Observation) error
	Close() error
}

// ViewerFactory creates the viewer the first time a frame is rendered
type ViewerFactory func() (Viewer, error)

// FrameDumper is a Viewer writing every frame as a numbered png
type FrameDumper struct {
	fs     afero.Fs
	dir    string
	frames int
}

var _ Viewer = &FrameDumper{}

func NewFrameDumper(fs afero.Fs, dir string) (*FrameDumper, error) {
	if err := util.EnsureDir(fs, dir); err != nil {
		return nil, fmt.Errorf("creating frame directory: %w", err)
	}
	return &FrameDumper{fs: fs, dir: dir}, nil
}

// FrameDumperFactory defers the creation of a FrameDumper
func FrameDumperFactory(fs afero.Fs, dir string) ViewerFactory {
	return func() (Viewer, error) {
		return NewFrameDumper(fs, dir)
	}
}

func (f *FrameDumper) Show(obs types.Observation) error {
	img, err := obs.Image()
	if err != nil {
		return err
	}
	file, err := f.fs.Create(path.Join(f.dir, fmt.Sprintf("frame_%06d.png", f.frames)))
	if err != nil {
		return err
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return err
	}
	f.frames += 1
	return nil
}

// Frames is the number of frames written
func (f *FrameDumper) Frames() int {
	return f.frames
}

func (f *FrameDumper) Close() error {
	return nil
}
