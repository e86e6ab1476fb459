package types

import (
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/ryanuber/columnize"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/zeu5/doomgym/util"
)

// ScoreAnalyzer collects the score of every valid episode
type ScoreAnalyzer struct {
	scores []float64
}

var _ Analyzer = &ScoreAnalyzer{}

func NewScoreAnalyzer() *ScoreAnalyzer {
	return &ScoreAnalyzer{scores: make([]float64, 0)}
}

func ScoreAnalyzerCtor() AnalyzerCtor {
	return func() Analyzer {
		return NewScoreAnalyzer()
	}
}

func (s *ScoreAnalyzer) Analyze(_ int, _ int, _ string, eCtx *EpisodeContext) {
	if !eCtx.Valid() {
		return
	}
	s.scores = append(s.scores, eCtx.Score)
}

// DataSet is a []float64 of scores in episode order
func (s *ScoreAnalyzer) DataSet() DataSet {
	out := make([]float64, len(s.scores))
	copy(out, s.scores)
	return out
}

func (s *ScoreAnalyzer) Reset() {
	s.scores = make([]float64, 0)
}

// Stats summarizes a list of episode scores
type Stats struct {
	Episodes int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// ScoreStats computes the statistics of the scores, zero when empty
func ScoreStats(scores []float64) Stats {
	if len(scores) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		std = 0
	}
	return Stats{
		Episodes: len(scores),
		Mean:     mean,
		StdDev:   std,
		Min:      floats.Min(scores),
		Max:      floats.Max(scores),
	}
}

// MovingAverage smooths the scores over a trailing window
func MovingAverage(scores []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(scores))
		copy(out, scores)
		return out
	}
	out := make([]float64, len(scores))
	sum := float64(0)
	for i, v := range scores {
		sum += v
		if i >= window {
			sum -= scores[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// ScorePlotComparator plots the smoothed score curve of every experiment,
// one png per run under plotPath
func ScorePlotComparator(fs afero.Fs, plotPath string, window int) Comparator {
	return func(run int, names []string, datasets []DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Score"
		for i := 0; i < len(names); i++ {
			scores, ok := datasets[i].([]float64)
			if !ok || len(scores) == 0 {
				continue
			}
			smoothed := MovingAverage(scores, window)
			points := make(plotter.XYs, len(smoothed))
			for j, v := range smoothed {
				points[j] = plotter.XY{
					X: float64(j),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}

		writer, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
		if err != nil {
			log.WithError(err).Warn("unable to render score plot")
			return
		}
		if err := util.EnsureDir(fs, plotPath); err != nil {
			log.WithError(err).Warn("unable to create plot directory")
			return
		}
		f, err := fs.Create(path.Join(plotPath, strconv.Itoa(run)+"_scores.png"))
		if err != nil {
			log.WithError(err).Warn("unable to create score plot")
			return
		}
		defer f.Close()
		if _, err := writer.WriteTo(f); err != nil {
			log.WithError(err).Warn("unable to write score plot")
		}
	}
}

// StatsComparator prints a table with the score statistics of every experiment
func StatsComparator(out io.Writer) Comparator {
	return func(run int, names []string, datasets []DataSet) {
		lines := []string{"Experiment | Episodes | Mean | StdDev | Min | Max"}
		for i, name := range names {
			scores, _ := datasets[i].([]float64)
			s := ScoreStats(scores)
			lines = append(lines, fmt.Sprintf("%s | %d | %.2f | %.2f | %.2f | %.2f",
				name, s.Episodes, s.Mean, s.StdDev, s.Min, s.Max))
		}
		fmt.Fprintf(out, "Run %d scores\n%s\n", run+1, columnize.SimpleFormat(lines))
	}
}
