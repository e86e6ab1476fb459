// Package recorder stores episode summaries outside the process
package recorder

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/zeu5/doomgym/types"
)

var log = logrus.WithField("component", "recorder")

// Nop discards every summary
type Nop struct{}

var _ types.Recorder = Nop{}

func (Nop) Record(types.EpisodeSummary) error { return nil }

func (Nop) Close() error { return nil }

// MultiRecorder forwards every summary to all its recorders
type MultiRecorder struct {
	recorders []types.Recorder
}

var _ types.Recorder = &MultiRecorder{}

func NewMultiRecorder(recorders ...types.Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// Record does not stop at the first failing recorder
func (m *MultiRecorder) Record(s types.EpisodeSummary) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Record(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
