package types

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreStats(t *testing.T) {
	assert.Equal(t, Stats{}, ScoreStats(nil))

	s := ScoreStats([]float64{5})
	assert.Equal(t, Stats{Episodes: 1, Mean: 5, Min: 5, Max: 5}, s)

	s = ScoreStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.Episodes)
	assert.Equal(t, float64(5), s.Mean)
	assert.InDelta(t, 2.138, s.StdDev, 0.001)
	assert.Equal(t, float64(2), s.Min)
	assert.Equal(t, float64(9), s.Max)
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2.5, 3.5}, MovingAverage([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestScoreAnalyzerSkipsInvalidEpisodes(t *testing.T) {
	a := NewScoreAnalyzer()
	valid := NewEpisodeContext(context.Background(), 0, 0, 0, "e")
	valid.Score = 3
	failed := NewEpisodeContext(context.Background(), 0, 0, 1, "e")
	failed.Score = 100
	failed.SetTimedOut()

	a.Analyze(0, 0, "e", valid)
	a.Analyze(0, 1, "e", failed)
	assert.Equal(t, []float64{3}, a.DataSet())

	a.Reset()
	assert.Empty(t, a.DataSet())
}

func TestStatsComparator(t *testing.T) {
	out := &bytes.Buffer{}
	StatsComparator(out)(0, []string{"random", "softmax"}, []DataSet{[]float64{1, 3}, []float64{}})

	assert.Contains(t, out.String(), "Run 1 scores")
	assert.Contains(t, out.String(), "random")
	assert.Contains(t, out.String(), "2.00")
}

func TestScorePlotComparator(t *testing.T) {
	fs := afero.NewMemMapFs()
	ScorePlotComparator(fs, "plots", 2)(3, []string{"a", "b"}, []DataSet{[]float64{1, 2, 3}, []float64{3, 2, 1}})

	info, err := fs.Stat("plots/3_scores.png")
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestMilestones(t *testing.T) {
	trace := NewTrace()
	trace.Append(0, 0, &StepResult{Reward: 0})
	trace.Append(1, 1, &StepResult{Reward: 2})
	trace.Append(2, 1, &StepResult{Reward: 2, Done: true})

	reached, step := TerminalMilestone().Check(trace)
	assert.True(t, reached)
	assert.Equal(t, 2, step)

	reached, step = ScoreMilestone("three", 3).Check(trace)
	assert.True(t, reached)
	assert.Equal(t, 2, step)

	reached, _ = ScoreMilestone("ten", 10).Check(trace)
	assert.False(t, reached)
}

func TestMilestoneAnalyzer(t *testing.T) {
	a := NewMilestoneAnalyzer(TerminalMilestone())
	for episode, done := range []bool{false, true, true} {
		eCtx := NewEpisodeContext(context.Background(), 0, 0, episode, "e")
		eCtx.Trace.Append(0, 0, &StepResult{Done: done})
		a.Analyze(0, episode, "e", eCtx)
	}
	assert.Equal(t, map[string]int{"terminal": 1}, a.DataSet())

	fs := afero.NewMemMapFs()
	out := &bytes.Buffer{}
	MilestoneComparator(fs, "results", out)(0, []string{"e"}, []DataSet{a.DataSet()})
	assert.Contains(t, out.String(), "Milestone: terminal, First episode: 1")

	bs, err := afero.ReadFile(fs, "results/0_milestones.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"e": {"terminal": 1}}`, string(bs))
}
