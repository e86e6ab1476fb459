package types

// Step of an episode. Observations are not kept to save memory.
type Step struct {
	Step   int     `json:"step"`
	Action int     `json:"action"`
	Reward float64 `json:"reward"`
	Done   bool    `json:"done"`
}

// Trace of an episode as a sequence of steps
type Trace struct {
	Steps []Step `json:"steps"`
}

func NewTrace() *Trace {
	return &Trace{
		Steps: make([]Step, 0),
	}
}

func (t *Trace) Append(step int, action int, result *StepResult) {
	t.Steps = append(t.Steps, Step{
		Step:   step,
		Action: action,
		Reward: result.Reward,
		Done:   result.Done,
	})
}

func (t *Trace) Len() int {
	return len(t.Steps)
}

func (t *Trace) Get(i int) (Step, bool) {
	if i < 0 || i >= len(t.Steps) {
		return Step{}, false
	}
	return t.Steps[i], true
}

func (t *Trace) Last() (Step, bool) {
	return t.Get(len(t.Steps) - 1)
}

// Score is the sum of the rewards in the trace
func (t *Trace) Score() float64 {
	score := float64(0)
	for _, s := range t.Steps {
		score += s.Reward
	}
	return score
}

// ActionCounts counts how often each action was taken
func (t *Trace) ActionCounts(n int) []int {
	counts := make([]int, n)
	for _, s := range t.Steps {
		if s.Action >= 0 && s.Action < n {
			counts[s.Action] += 1
		}
	}
	return counts
}

func (t *Trace) GetPrefix(i int) (*Trace, bool) {
	if i > len(t.Steps) {
		return nil, false
	}
	return &Trace{Steps: t.Steps[0:i]}, true
}
