package types

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/spf13/afero"

	"github.com/zeu5/doomgym/util"
)

// Milestone is a named check on a trace. Check returns whether the trace
// reaches the milestone and at which step.
type Milestone struct {
	Name  string
	Check func(*Trace) (bool, int)
}

// TerminalMilestone is reached when the environment ends the episode
func TerminalMilestone() Milestone {
	return Milestone{
		Name: "terminal",
		Check: func(t *Trace) (bool, int) {
			last, ok := t.Last()
			if !ok || !last.Done {
				return false, 0
			}
			return true, last.Step
		},
	}
}

// ScoreMilestone is reached at the first step where the cumulative
// reward is at least min
func ScoreMilestone(name string, min float64) Milestone {
	return Milestone{
		Name: name,
		Check: func(t *Trace) (bool, int) {
			score := float64(0)
			for _, s := range t.Steps {
				score += s.Reward
				if score >= min {
					return true, s.Step
				}
			}
			return false, 0
		},
	}
}

// MilestoneAnalyzer keeps the first episode reaching each milestone
type MilestoneAnalyzer struct {
	milestones []Milestone
	first      map[string]int
}

var _ Analyzer = &MilestoneAnalyzer{}

func NewMilestoneAnalyzer(milestones ...Milestone) *MilestoneAnalyzer {
	return &MilestoneAnalyzer{
		milestones: milestones,
		first:      make(map[string]int),
	}
}

// MilestoneAnalyzerCtor creates analyzers tracking the same milestones
func MilestoneAnalyzerCtor(milestones ...Milestone) AnalyzerCtor {
	return func() Analyzer {
		return NewMilestoneAnalyzer(milestones...)
	}
}

func (m *MilestoneAnalyzer) Analyze(_ int, episode int, _ string, eCtx *EpisodeContext) {
	if !eCtx.Valid() {
		return
	}
	for _, ms := range m.milestones {
		if _, ok := m.first[ms.Name]; ok {
			continue
		}
		if reached, _ := ms.Check(eCtx.Trace); reached {
			m.first[ms.Name] = episode
		}
	}
}

// DataSet is a map[string]int from milestone to first episode
func (m *MilestoneAnalyzer) DataSet() DataSet {
	out := make(map[string]int, len(m.first))
	for k, v := range m.first {
		out[k] = v
	}
	return out
}

func (m *MilestoneAnalyzer) Reset() {
	m.first = make(map[string]int)
}

// MilestoneComparator prints the first episodes and stores them as
// <run>_milestones.json under savePath when it is set
func MilestoneComparator(fs afero.Fs, savePath string, out io.Writer) Comparator {
	return func(run int, names []string, ds []DataSet) {
		data := make(map[string]map[string]int)
		for i, exp := range names {
			first, _ := ds[i].(map[string]int)
			fmt.Fprintf(out, "For run:%d, experiment: %s\n", run, exp)
			for name, episode := range first {
				fmt.Fprintf(out, "\tMilestone: %s, First episode: %d\n", name, episode)
			}
			data[exp] = first
		}
		if savePath == "" {
			return
		}
		bs, err := json.Marshal(data)
		if err != nil {
			return
		}
		if err := util.WriteToFile(fs, path.Join(savePath, strconv.Itoa(run)+"_milestones.json"), string(bs)); err != nil {
			log.WithError(err).Warn("unable to record milestones")
		}
	}
}
