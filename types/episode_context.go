package types

import (
	"context"
	"time"
)

// EpisodeContext carries what an episode needs and what it produced
type EpisodeContext struct {
	Context context.Context
	Cancel  context.CancelFunc

	Run        int
	Episode    int
	Experiment string

	Trace     *Trace
	Timesteps int
	Score     float64

	// Terminal is set when the environment reported done
	Terminal bool
	// HorizonEnd is set when the horizon was reached first
	HorizonEnd bool
	// Declined is set when the policy had no action to take
	Declined bool
	TimedOut   bool
	Err        error

	RunDuration time.Duration
	StepTimes   []time.Duration
}

// NewEpisodeContext derives the episode context from parent, bounded by
// timeout when it is positive
func NewEpisodeContext(parent context.Context, timeout time.Duration, run, episode int, experiment string) *EpisodeContext {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	return &EpisodeContext{
		Context:    ctx,
		Cancel:     cancel,
		Run:        run,
		Episode:    episode,
		Experiment: experiment,
		Trace:      NewTrace(),
		StepTimes:  make([]time.Duration, 0),
	}
}

func (e *EpisodeContext) SetError(err error) {
	e.Err = err
}

func (e *EpisodeContext) SetTimedOut() {
	e.TimedOut = true
}

// Valid reports whether the episode ended without an error or timeout
func (e *EpisodeContext) Valid() bool {
	return e.Err == nil && !e.TimedOut
}

// MeanStepTime is the average duration of an environment step
func (e *EpisodeContext) MeanStepTime() time.Duration {
	if len(e.StepTimes) == 0 {
		return 0
	}
	total := time.Duration(0)
	for _, d := range e.StepTimes {
		total += d
	}
	return total / time.Duration(len(e.StepTimes))
}

// Summary condenses the episode for recording, counting actions of a
// space of the given size
func (e *EpisodeContext) Summary(actions int) EpisodeSummary {
	s := EpisodeSummary{
		Experiment: e.Experiment,
		Run:        e.Run,
		Episode:    e.Episode,
		Steps:      e.Timesteps,
		Score:      e.Score,
		Terminal:   e.Terminal,
		TimedOut:   e.TimedOut,
		Declined:   e.Declined,
		DurationMs: e.RunDuration.Milliseconds(),
		MeanStepUs: e.MeanStepTime().Microseconds(),
	}
	if actions > 0 {
		s.ActionCounts = e.Trace.ActionCounts(actions)
	}
	if e.Err != nil {
		s.Error = e.Err.Error()
	}
	return s
}

// EpisodeSummary is the record kept for every episode
type EpisodeSummary struct {
	Experiment   string  `json:"experiment"`
	Run          int     `json:"run"`
	Episode      int     `json:"episode"`
	Steps        int     `json:"steps"`
	Score        float64 `json:"score"`
	Terminal     bool    `json:"terminal"`
	TimedOut     bool    `json:"timed_out"`
	Declined     bool    `json:"declined,omitempty"`
	Error        string  `json:"error,omitempty"`
	DurationMs   int64   `json:"duration_ms"`
	MeanStepUs   int64   `json:"mean_step_us"`
	ActionCounts []int   `json:"action_counts,omitempty"`
}

// Recorder stores episode summaries
type Recorder interface {
	Record(EpisodeSummary) error
	Close() error
}
