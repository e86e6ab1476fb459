package recorder

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/spf13/afero"

	"github.com/zeu5/doomgym/types"
	"github.com/zeu5/doomgym/util"
)

// FileRecorder appends one json line per episode to <dir>/<experiment>.jsonl
type FileRecorder struct {
	fs  afero.Fs
	dir string
}

var _ types.Recorder = &FileRecorder{}

func NewFileRecorder(fs afero.Fs, dir string) (*FileRecorder, error) {
	if err := util.EnsureDir(fs, dir); err != nil {
		return nil, fmt.Errorf("creating record directory: %w", err)
	}
	return &FileRecorder{fs: fs, dir: dir}, nil
}

// Path of the file the summaries of the experiment go to
func (f *FileRecorder) Path(experiment string) string {
	return path.Join(f.dir, experiment+".jsonl")
}

func (f *FileRecorder) Record(s types.EpisodeSummary) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return util.AppendToFile(f.fs, f.Path(s.Experiment), string(bs))
}

func (f *FileRecorder) Close() error {
	return nil
}
